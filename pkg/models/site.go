package models

// IconType enumerates where a site icon comes from
type IconType string

const (
	IconIconify  IconType = "iconify"  // iconify icon reference, e.g. "mdi:link"
	IconUploaded IconType = "uploaded" // path of an uploaded asset, e.g. "/uploads/xxx.png"
	IconFavicon  IconType = "favicon"  // absolute URL discovered from the target site
)

// Valid reports whether the icon type is one of the known variants
func (t IconType) Valid() bool {
	switch t {
	case IconIconify, IconUploaded, IconFavicon:
		return true
	}
	return false
}

// SiteIcon is a tagged icon value; interpretation of Value depends on Type
type SiteIcon struct {
	Type  IconType `json:"type"`
	Value string   `json:"value"`
}

// OpenMode enumerates how a site link is opened by the client
type OpenMode string

const (
	OpenCurrent OpenMode = "current" // navigate in the current page
	OpenBlank   OpenMode = "blank"   // open a new window
	OpenModal   OpenMode = "modal"   // open inside an embedded frame
)

// Valid reports whether the open mode is one of the known variants
func (m OpenMode) Valid() bool {
	switch m {
	case OpenCurrent, OpenBlank, OpenModal:
		return true
	}
	return false
}

// Site represents a single navigable bookmark entry
type Site struct {
	ID          string   `json:"id"`
	GroupID     string   `json:"groupId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Icon        SiteIcon `json:"icon"`
	PublicURL   string   `json:"publicUrl"`
	PrivateURL  string   `json:"privateUrl,omitempty"`
	OpenMode    OpenMode `json:"openMode"`
	Tags        []string `json:"tags"`
	Enabled     bool     `json:"enabled"`
	Order       int      `json:"order"` // scoped to the site's group
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

// SiteCreateRequest represents the request payload for site creation
type SiteCreateRequest struct {
	GroupID     string   `json:"groupId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        SiteIcon `json:"icon"`
	PublicURL   string   `json:"publicUrl"`
	PrivateURL  string   `json:"privateUrl"`
	OpenMode    OpenMode `json:"openMode"`
	Tags        []string `json:"tags"`
	Enabled     *bool    `json:"enabled"`
}

// SiteUpdateRequest is the constrained patch for site update.
// Only the fields listed here are mutable; id/createdAt/updatedAt never are,
// and order changes only implicitly when the site moves to another group
// (use the reorder endpoint for explicit ordering).
type SiteUpdateRequest struct {
	GroupID     *string   `json:"groupId"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Icon        *SiteIcon `json:"icon"`
	PublicURL   *string   `json:"publicUrl"`
	PrivateURL  *string   `json:"privateUrl"`
	OpenMode    *OpenMode `json:"openMode"`
	Tags        *[]string `json:"tags"`
	Enabled     *bool     `json:"enabled"`
}

// SiteOrder is a single {id, order, groupId?} triple of a bulk reorder
type SiteOrder struct {
	ID      string  `json:"id"`
	Order   int     `json:"order"`
	GroupID *string `json:"groupId"`
}

// SiteReorderRequest represents the request payload for bulk site reorder
type SiteReorderRequest struct {
	SiteOrders []SiteOrder `json:"siteOrders"`
}

// SitesData is the whole dataset, the unit of whole-document read/write
type SitesData struct {
	Groups []Group `json:"groups"`
	Sites  []Site  `json:"sites"`
}
