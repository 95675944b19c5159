package utils

// CloudKeepArt is the banner printed by the CLI on startup.
const CloudKeepArt = `
   ________                ____ __
  / ____/ /___  __  ______/ / //_/__  ___  ____
 / /   / / __ \/ / / / __  / ,< / _ \/ _ \/ __ \
/ /___/ / /_/ / /_/ / /_/ / /| /  __/  __/ /_/ /
\____/_/\____/\__,_/\__,_/_/ |_\___/\___/ .___/
                                        /_/`
