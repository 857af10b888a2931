package patterns

import "siteintel/internal/models"

// MarkerKind selects which part of a fetched page a Marker is tested against.
type MarkerKind int

const (
	MarkerGenerator MarkerKind = iota // <meta name="generator"> content
	MarkerAsset                       // script src / link href
	MarkerHTML                        // raw document substring
	MarkerCookie                      // Set-Cookie name prefix
	MarkerHeader                      // response header; Value matched against its value
	MarkerHost                        // final URL host suffix
)

type Marker struct {
	Kind  MarkerKind
	Name  string // header name for MarkerHeader
	Value string // lowercase
}

// PlatformRule matches when every marker matches.
type PlatformRule struct {
	Platform models.Platform
	Markers  []Marker
}

func gen(v string) Marker { return Marker{Kind: MarkerGenerator, Value: v} }
func asset(v string) Marker { return Marker{Kind: MarkerAsset, Value: v} }
func html(v string) Marker { return Marker{Kind: MarkerHTML, Value: v} }
func cookie(v string) Marker { return Marker{Kind: MarkerCookie, Value: v} }
func header(n, v string) Marker { return Marker{Kind: MarkerHeader, Name: n, Value: v} }
func host(v string) Marker { return Marker{Kind: MarkerHost, Value: v} }
func rule(p models.Platform, m ...Marker) PlatformRule {
	return PlatformRule{Platform: p, Markers: m}
}

// PlatformRules is evaluated top to bottom and the first full match wins.
// Commerce engines come before hosted builders, builders before generic CMSs,
// CMSs before JavaScript frameworks.
var PlatformRules = []PlatformRule{
	// Commerce engines
	rule(models.PlatformShopify, host(".myshopify.com")),
	rule(models.PlatformShopify, asset("cdn.shopify.com")),
	rule(models.PlatformShopify, header("X-ShopId", "")),
	rule(models.PlatformShopify, cookie("_shopify_y")),
	rule(models.PlatformShopify, html("shopify.theme")),

	rule(models.PlatformMagento, header("X-Magento-Tags", "")),
	rule(models.PlatformMagento, html("mage/cookies")),
	rule(models.PlatformMagento, asset("/static/version"), html("mage/")),
	rule(models.PlatformMagento, html("magento_")),

	rule(models.PlatformWooCommerce, gen("woocommerce")),
	rule(models.PlatformWooCommerce, asset("plugins/woocommerce")),
	rule(models.PlatformWooCommerce, html("wp-content"), html("woocommerce")),

	rule(models.PlatformBigCommerce, asset("bigcommerce.com")),
	rule(models.PlatformBigCommerce, host(".mybigcommerce.com")),

	rule(models.PlatformPrestaShop, gen("prestashop")),
	rule(models.PlatformPrestaShop, cookie("prestashop-")),
	rule(models.PlatformPrestaShop, html("var prestashop")),

	// Hosted builders
	rule(models.PlatformWix, gen("wix.com")),
	rule(models.PlatformWix, host(".wixsite.com")),
	rule(models.PlatformWix, header("X-Wix-Request-Id", "")),
	rule(models.PlatformWix, asset("static.wixstatic.com")),
	rule(models.PlatformWix, asset("static.parastorage.com")),
	rule(models.PlatformWix, html("_wixcssvars")),

	rule(models.PlatformSquarespace, gen("squarespace")),
	rule(models.PlatformSquarespace, asset("static1.squarespace.com")),
	rule(models.PlatformSquarespace, asset("assets.squarespace.com")),
	rule(models.PlatformSquarespace, html("<!-- this is squarespace. -->")),
	rule(models.PlatformSquarespace, html("squarespace_context")),

	rule(models.PlatformWebflow, gen("webflow")),
	rule(models.PlatformWebflow, host(".webflow.io")),
	rule(models.PlatformWebflow, html("data-wf-page")),

	rule(models.PlatformGhost, gen("ghost")),
	rule(models.PlatformGhost, host(".ghost.io")),

	// Generic CMSs
	rule(models.PlatformWordPress, gen("wordpress")),
	rule(models.PlatformWordPress, asset("/wp-content/")),
	rule(models.PlatformWordPress, asset("/wp-includes/")),
	rule(models.PlatformWordPress, html("/wp-json/")),
	rule(models.PlatformWordPress, html("wp-content")),

	rule(models.PlatformDrupal, gen("drupal")),
	rule(models.PlatformDrupal, header("X-Generator", "drupal")),
	rule(models.PlatformDrupal, header("X-Drupal-Cache", "")),
	rule(models.PlatformDrupal, html("drupal-settings-json")),
	rule(models.PlatformDrupal, html("drupal.settings")),

	rule(models.PlatformJoomla, gen("joomla")),
	rule(models.PlatformJoomla, asset("/media/jui/")),
	rule(models.PlatformJoomla, html("/components/com_")),

	// Frameworks
	rule(models.PlatformNextJS, asset("/_next/")),
	rule(models.PlatformNextJS, html("__next_data__")),
	rule(models.PlatformNextJS, header("X-Powered-By", "next.js")),
	rule(models.PlatformNextJS, html("data-reactroot")),
}

// PurposeRule matches when the detected platform is listed or when at least
// MinHits keywords occur in the lowercased page text.
type PurposeRule struct {
	Purpose   models.Purpose
	Platforms []models.Platform
	Keywords  []string
	MinHits   int
}

var PurposeRules = []PurposeRule{
	{
		Purpose: models.PurposeEcommerce,
		Platforms: []models.Platform{
			models.PlatformShopify, models.PlatformMagento, models.PlatformWooCommerce,
			models.PlatformBigCommerce, models.PlatformPrestaShop,
		},
		Keywords: []string{"add to cart", "add-to-cart", "checkout", "shopping cart", "free shipping", "shop now"},
		MinHits:  2,
	},
	{
		Purpose:   models.PurposeBlog,
		Platforms: []models.Platform{models.PlatformGhost},
		Keywords:  []string{"read more", "posted on", "recent posts", "categories", "leave a comment", "blog"},
		MinHits:   2,
	},
	{
		Purpose:  models.PurposeRestaurant,
		Keywords: []string{"menu", "reservation", "book a table", "takeaway", "order online", "opening hours"},
		MinHits:  2,
	},
	{
		Purpose:  models.PurposePortfolio,
		Keywords: []string{"portfolio", "my work", "case studies", "selected work", "projects"},
		MinHits:  2,
	},
	{
		Purpose:  models.PurposeBusiness,
		Keywords: []string{"our services", "about us", "our team", "clients", "get a quote", "solutions"},
		MinHits:  2,
	},
}
