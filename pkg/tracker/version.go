package tracker

// Version is the release version of the tracker module and CLI.
const Version = "0.1.0"
