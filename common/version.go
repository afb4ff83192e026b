package common

// Version is the service version. Overridden at build time via
// -ldflags "-X github.com/olheureu/se05x-provision/common.Version=...".
var Version = "dev"
