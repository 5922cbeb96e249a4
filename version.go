package pcc

// Version is the compiler release version.
const Version = "1.0.0"

// BuildDate is stamped by the build; "dev" when built from source directly.
var BuildDate = "dev"
