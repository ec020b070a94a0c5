package post

import "strings"

// NormalizeImageURL turns an empty or blank image reference into nil.
func NormalizeImageURL(raw *string) *string {
	if raw == nil {
		return nil
	}

	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil
	}

	return &v
}

func NewCreateParams(authorID int64, req CreatePostRequest) CreateParams {
	return CreateParams{
		AuthorID:  authorID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		ImageURL:  NormalizeImageURL(req.ImageURL),
		Published: req.Published,
	}
}

func NewUpdateParams(req UpdatePostRequest) UpdateParams {
	return UpdateParams{
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		ImageURL:  NormalizeImageURL(req.ImageURL),
		Published: req.Published,
	}
}
