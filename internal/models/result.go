package models

import (
	"encoding/json"
	"time"
)

type SiteStatus string
type Platform string
type Purpose string
type Grade string

const (
	StatusActive   SiteStatus = "Active"
	StatusInactive SiteStatus = "Inactive"
	StatusError    SiteStatus = "Error"
	StatusSkipped  SiteStatus = "Skipped"

	PlatformShopify     Platform = "Shopify"
	PlatformMagento     Platform = "Magento"
	PlatformWooCommerce Platform = "WooCommerce"
	PlatformBigCommerce Platform = "BigCommerce"
	PlatformPrestaShop  Platform = "PrestaShop"
	PlatformWix         Platform = "Wix"
	PlatformSquarespace Platform = "Squarespace"
	PlatformWebflow     Platform = "Webflow"
	PlatformGhost       Platform = "Ghost"
	PlatformWordPress   Platform = "WordPress"
	PlatformDrupal      Platform = "Drupal"
	PlatformJoomla      Platform = "Joomla"
	PlatformNextJS      Platform = "React/Next.js"
	PlatformUnknown     Platform = "Unknown"

	PurposeEcommerce  Purpose = "E-commerce"
	PurposeBlog       Purpose = "Blog"
	PurposePortfolio  Purpose = "Portfolio"
	PurposeRestaurant Purpose = "Restaurant"
	PurposeBusiness   Purpose = "Business"
	PurposeGeneral    Purpose = "General"

	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// YesNo is a boolean that serializes as "Yes" or "No".
type YesNo bool

func (y YesNo) MarshalJSON() ([]byte, error) {
	if y {
		return []byte(`"Yes"`), nil
	}
	return []byte(`"No"`), nil
}

func (y *YesNo) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*y = s == "Yes"
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*y = YesNo(b)
	return nil
}

func (y YesNo) String() string {
	if y {
		return "Yes"
	}
	return "No"
}

// SocialNetworks is the fixed order in which networks are matched and reported.
var SocialNetworks = []string{
	"facebook", "twitter", "linkedin", "instagram",
	"youtube", "pinterest", "tiktok", "whatsapp",
}

type ContactPage struct {
	URL        string  `json:"url"`
	LinkText   string  `json:"linkText"`
	Confidence float64 `json:"confidence"`
}

type SecurityFlags struct {
	IsHTTPS          YesNo `json:"isHttps"`
	HasHSTS          YesNo `json:"hasHsts"`
	HasCSP           YesNo `json:"hasCsp"`
	HasXFrameOptions YesNo `json:"hasXFrameOptions"`
	HasSPF           YesNo `json:"hasSpf"`
	HasDMARC         YesNo `json:"hasDmarc"`
}

type AnalysisResult struct {
	Domain   string   `json:"domain"`
	FinalURL string   `json:"finalUrl,omitempty"`
	Platform Platform `json:"platform"`
	Purpose  Purpose  `json:"purpose"`
	IsHTTPS  YesNo    `json:"isHttps"`

	// SEO
	HasTitle              YesNo `json:"hasTitle"`
	TitleLength           int   `json:"titleLength"`
	TitleOptimal          YesNo `json:"titleOptimal"`
	HasMetaDescription    YesNo `json:"hasMetaDescription"`
	MetaDescriptionLength int   `json:"metaDescriptionLength"`
	DescriptionOptimal    YesNo `json:"descriptionOptimal"`
	H1Count               int   `json:"h1Count"`
	HasH2                 YesNo `json:"hasH2"`
	HasViewport           YesNo `json:"hasViewport"`
	HasCanonical          YesNo `json:"hasCanonical"`
	HasRobotsMeta         YesNo `json:"hasRobotsMeta"`
	HasStructuredData     YesNo `json:"hasStructuredData"`
	HasOpenGraph          YesNo `json:"hasOpenGraph"`
	HasTwitterCard        YesNo `json:"hasTwitterCard"`
	HasLazyLoading        YesNo `json:"hasLazyLoading"`
	HasPreload            YesNo `json:"hasPreload"`
	HasAltTags            YesNo `json:"hasAltTags"`
	HasLang               YesNo `json:"hasLang"`

	SEOScore     int                `json:"seoScore"`
	SEOGrade     Grade              `json:"seoGrade"`
	SEOBreakdown map[string]float64 `json:"seoBreakdown,omitempty"`

	// Contacts
	Emails       []string      `json:"emails"`
	Phones       []string      `json:"phones"`
	ContactPages []ContactPage `json:"contactPages"`

	// Social
	SocialLinks       map[string][]string `json:"socialLinks"`
	SocialPresence    map[string]YesNo    `json:"socialPresence"`
	TotalSocialLinks  int                 `json:"totalSocialLinks"`
	Security          SecurityFlags       `json:"security"`
	HTTPStatus        int                 `json:"httpStatus,omitempty"`
	Status            SiteStatus          `json:"status"`
	ErrorDetail       string              `json:"errorDetail,omitempty"`
	RawContent        string              `json:"rawContent,omitempty"`
	AnalyzedAt        time.Time           `json:"analyzedAt"`
	DurationMs        int64               `json:"durationMs"`
	ContactPageSource string              `json:"contactPageSource,omitempty"`
}

// NewResult returns a result for domain with every collection initialized and
// every flag at its default.
func NewResult(domain string) AnalysisResult {
	links := make(map[string][]string, len(SocialNetworks))
	presence := make(map[string]YesNo, len(SocialNetworks))
	for _, n := range SocialNetworks {
		links[n] = []string{}
		presence[n] = false
	}
	return AnalysisResult{
		Domain:         domain,
		Platform:       PlatformUnknown,
		Purpose:        PurposeGeneral,
		SEOGrade:       GradeF,
		Emails:         []string{},
		Phones:         []string{},
		ContactPages:   []ContactPage{},
		SocialLinks:    links,
		SocialPresence: presence,
	}
}
