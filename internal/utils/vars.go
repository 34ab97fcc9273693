package utils

// DefaultBufferSize is the chunk size for the built-in HTTP engine.
const DefaultBufferSize = 256 * 1024

// BrowserUserAgent is sent on every request; pixeldrain serves errors to
// obvious tool user agents.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
