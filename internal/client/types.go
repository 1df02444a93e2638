package client

// Page/story/blog publication states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// PageLayoutItem references a module from a page's ordered layout. Module
// is a denormalized snapshot present only on content-rich fetches.
type PageLayoutItem struct {
	ModuleID string  `json:"moduleId" yaml:"moduleId"`
	Order    int     `json:"order" yaml:"order"`
	Module   *Module `json:"module,omitempty" yaml:"module,omitempty"`
}

type Page struct {
	ID              string           `json:"id" yaml:"id"`
	Title           string           `json:"title" yaml:"title"`
	Slug            string           `json:"slug" yaml:"slug"`
	Excerpt         string           `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	MetaTitle       string           `json:"metaTitle,omitempty" yaml:"metaTitle,omitempty"`
	MetaDescription string           `json:"metaDescription,omitempty" yaml:"metaDescription,omitempty"`
	CanonicalURL    string           `json:"canonicalUrl,omitempty" yaml:"canonicalUrl,omitempty"`
	Status          string           `json:"status" yaml:"status"`
	PublishedAt     *string          `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
	Layout          []PageLayoutItem `json:"layout" yaml:"layout"`
	CreatedBy       string           `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	CreatedAt       string           `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       string           `json:"updatedAt" yaml:"updatedAt"`
}

// Module is a reusable content block. Content is an arbitrary JSON object
// whose shape depends on Type; the content editor infers display kinds
// from it but nothing about that inference is persisted.
type Module struct {
	ID        string         `json:"id" yaml:"id"`
	Type      string         `json:"type" yaml:"type"`
	Title     string         `json:"title" yaml:"title"`
	Content   map[string]any `json:"content" yaml:"content"`
	Status    string         `json:"status" yaml:"status"`
	Version   int            `json:"version" yaml:"version"`
	CreatedBy string         `json:"createdBy,omitempty" yaml:"createdBy,omitempty"`
	CreatedAt string         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt string         `json:"updatedAt" yaml:"updatedAt"`
}

type Story struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Slug            string   `json:"slug" yaml:"slug"`
	Body            string   `json:"body,omitempty" yaml:"body,omitempty"`
	Excerpt         string   `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Tags            []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Status          string   `json:"status" yaml:"status"`
	Featured        bool     `json:"featured" yaml:"featured"`
	MetaTitle       string   `json:"metaTitle,omitempty" yaml:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty" yaml:"metaDescription,omitempty"`
	CanonicalURL    string   `json:"canonicalUrl,omitempty" yaml:"canonicalUrl,omitempty"`
	PublishedAt     *string  `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
	CreatedAt       string   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       string   `json:"updatedAt" yaml:"updatedAt"`
}

type Blog struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Slug            string   `json:"slug" yaml:"slug"`
	Body            string   `json:"body,omitempty" yaml:"body,omitempty"`
	Excerpt         string   `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Tags            []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Status          string   `json:"status" yaml:"status"`
	Featured        bool     `json:"featured" yaml:"featured"`
	MetaTitle       string   `json:"metaTitle,omitempty" yaml:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty" yaml:"metaDescription,omitempty"`
	CanonicalURL    string   `json:"canonicalUrl,omitempty" yaml:"canonicalUrl,omitempty"`
	PublishedAt     *string  `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
	CreatedAt       string   `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       string   `json:"updatedAt" yaml:"updatedAt"`
}

// MediaItem is server-confirmed upload metadata. SizeKB is normalized to
// kilobytes by the backend.
type MediaItem struct {
	ID         string `json:"id" yaml:"id"`
	Filename   string `json:"filename" yaml:"filename"`
	URL        string `json:"url" yaml:"url"`
	SizeKB     int64  `json:"sizeKb" yaml:"sizeKb"`
	MimeType   string `json:"mimeType" yaml:"mimeType"`
	UploadedAt string `json:"uploadedAt" yaml:"uploadedAt"`
}

type FormSubmission struct {
	ID          string         `json:"id" yaml:"id"`
	FormName    string         `json:"formName" yaml:"formName"`
	Fields      map[string]any `json:"fields" yaml:"fields"`
	SubmittedAt string         `json:"submittedAt" yaml:"submittedAt"`
}

type Subscriber struct {
	ID             string  `json:"id" yaml:"id"`
	Email          string  `json:"email" yaml:"email"`
	Subscribed     bool    `json:"subscribed" yaml:"subscribed"`
	SubscribedAt   string  `json:"subscribedAt" yaml:"subscribedAt"`
	UnsubscribedAt *string `json:"unsubscribedAt,omitempty" yaml:"unsubscribedAt,omitempty"`
}

type User struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
}

// DeleteResponse is the shared shape of delete confirmations.
type DeleteResponse struct {
	Message string `json:"message" yaml:"message"`
	ID      string `json:"id" yaml:"id"`
}
