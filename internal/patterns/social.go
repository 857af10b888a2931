package patterns

import "regexp"

type SocialPattern struct {
	Network string
	Pattern *regexp.Regexp
}

// SocialPatterns follows the order of models.SocialNetworks. A URL is
// assigned to the first network whose pattern matches.
var SocialPatterns = []SocialPattern{
	{"facebook", regexp.MustCompile(`(?i)^https?://(?:[a-z]{2,3}\.|m\.|www\.)?(?:facebook\.com|fb\.com)/[a-zA-Z0-9._%-]+`)},
	{"twitter", regexp.MustCompile(`(?i)^https?://(?:www\.|mobile\.)?(?:twitter\.com|x\.com)/[a-zA-Z0-9_]+`)},
	{"linkedin", regexp.MustCompile(`(?i)^https?://(?:[a-z]{2,3}\.|www\.)?linkedin\.com/(?:in|company|school)/[a-zA-Z0-9._%-]+`)},
	{"instagram", regexp.MustCompile(`(?i)^https?://(?:www\.)?instagram\.com/[a-zA-Z0-9._]+`)},
	{"youtube", regexp.MustCompile(`(?i)^https?://(?:(?:www\.|m\.)?youtube\.com/(?:channel/|user/|c/|@)?|youtu\.be/)[a-zA-Z0-9._-]+`)},
	{"pinterest", regexp.MustCompile(`(?i)^https?://(?:[a-z]{2}\.|www\.)?pinterest\.[a-z.]+/[a-zA-Z0-9._-]+`)},
	{"tiktok", regexp.MustCompile(`(?i)^https?://(?:www\.)?tiktok\.com/@[a-zA-Z0-9._-]+`)},
	{"whatsapp", regexp.MustCompile(`(?i)^https?://(?:wa\.me|api\.whatsapp\.com|chat\.whatsapp\.com)/`)},
}

// ShareLinkPattern matches share and intent endpoints that point at the
// network rather than at the site's own profile.
var ShareLinkPattern = regexp.MustCompile(`(?i)/(?:sharer|share|intent|dialog|plugins)(?:[/.?]|$)|/sharearticle|/pin/create`)
