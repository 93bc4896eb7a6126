package confluence

type space struct {
	Key string `json:"key"`
}

type bodyValue struct {
	Value          string `json:"value"`
	Representation string `json:"representation,omitempty"`
}

type content struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Space *space `json:"space"`
	Body  struct {
		ExportView *bodyValue `json:"export_view"`
		Storage    *bodyValue `json:"storage"`
	} `json:"body"`
	Version *struct {
		Number *int    `json:"number"`
		When   *string `json:"when"`
		By     *struct {
			DisplayName *string `json:"displayName"`
		} `json:"by"`
	} `json:"version"`
	History *struct {
		CreatedDate *string `json:"createdDate"`
		LastUpdated *struct {
			When *string `json:"when"`
		} `json:"lastUpdated"`
	} `json:"history"`
}

type searchItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Space   *space `json:"space"`
	Content *struct {
		ID      string `json:"id"`
		AltID   string `json:"_id"`
		Title   string `json:"title"`
		Excerpt string `json:"excerpt"`
		Space   *space `json:"space"`
	} `json:"content"`
}

type SearchResult struct {
	ID       *string `json:"id"`
	Title    *string `json:"title"`
	SpaceKey *string `json:"spaceKey"`
	URL      *string `json:"url"`
	Excerpt  *string `json:"excerpt"`
}

type PageVersion struct {
	Number *int    `json:"number"`
	When   *string `json:"when"`
	By     *string `json:"by"`
}

type Page struct {
	ID            *string     `json:"id"`
	Title         *string     `json:"title"`
	SpaceKey      *string     `json:"spaceKey"`
	URL           *string     `json:"url"`
	Format        string      `json:"format"`
	Body          string      `json:"body"`
	Version       PageVersion `json:"version"`
	Labels        []string    `json:"labels"`
	CreatedAt     *string     `json:"createdAt"`
	LastUpdatedAt *string     `json:"lastUpdatedAt"`
}

type CreatePageRequest struct {
	SpaceKey       string
	Title          string
	Body           string
	Representation string
	ParentID       string
}

type UpdatePageRequest struct {
	PageID         string
	Title          string
	Body           string
	Representation string
	MinorEdit      bool
	VersionComment string
	ParentID       string
}
