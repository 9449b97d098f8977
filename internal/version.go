package internal

// Version is the current cacheconv release
const Version = "0.3.0"
