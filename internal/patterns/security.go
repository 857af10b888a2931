package patterns

// Response headers inspected by the security analyzer.
const (
	HeaderHSTS          = "Strict-Transport-Security"
	HeaderCSP           = "Content-Security-Policy"
	HeaderXFrameOptions = "X-Frame-Options"
)

// DNS TXT prefixes for mail-authentication posture.
const (
	SPFPrefix   = "v=spf1"
	DMARCPrefix = "v=DMARC1"
	DMARCLabel  = "_dmarc."
)
