// Package slides extracts text content from Google Slides decks in a Drive
// folder, for ingestion into the profile index.
package slides

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	gslides "google.golang.org/api/slides/v1"
)

// Slide is the extracted text of one slide
type Slide struct {
	Number int
	Title  string
	Body   string
}

// Presentation is one deck with its extracted slides
type Presentation struct {
	ID     string
	Title  string
	Slides []Slide
}

// Client reads presentations via the Drive and Slides APIs
type Client struct {
	drive  *drive.Service
	slides *gslides.Service
}

// NewClient creates a slides client from authenticated API services
func NewClient(driveSvc *drive.Service, slidesSvc *gslides.Service) *Client {
	return &Client{
		drive:  driveSvc,
		slides: slidesSvc,
	}
}

// List returns the presentations inside a Drive folder
func (c *Client) List(ctx context.Context, folderID string) ([]Presentation, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType='application/vnd.google-apps.presentation'", folderID)

	result, err := c.drive.Files.List().
		Context(ctx).
		Q(query).
		Fields("files(id, name)").
		PageSize(100).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list presentations: %w", err)
	}

	presentations := make([]Presentation, 0, len(result.Files))
	for _, f := range result.Files {
		presentations = append(presentations, Presentation{
			ID:    f.Id,
			Title: f.Name,
		})
	}

	return presentations, nil
}

// Fetch loads and extracts the text of one presentation
func (c *Client) Fetch(ctx context.Context, presentationID string) (*Presentation, error) {
	pres, err := c.slides.Presentations.Get(presentationID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get presentation: %w", err)
	}

	title := pres.Title
	if title == "" {
		title = "Untitled Presentation"
	}

	result := &Presentation{
		ID:    presentationID,
		Title: title,
	}

	for i, page := range pres.Slides {
		result.Slides = append(result.Slides, extractSlide(page, i+1))
	}

	return result, nil
}

// FetchAll lists a folder and extracts every deck in it
func (c *Client) FetchAll(ctx context.Context, folderID string) ([]Presentation, error) {
	listed, err := c.List(ctx, folderID)
	if err != nil {
		return nil, err
	}

	presentations := make([]Presentation, 0, len(listed))
	for _, p := range listed {
		full, err := c.Fetch(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch %q: %w", p.Title, err)
		}
		// Drive's file name is the user-visible deck name; prefer it
		if p.Title != "" {
			full.Title = p.Title
		}
		presentations = append(presentations, *full)
	}

	return presentations, nil
}

// extractSlide pulls title and body text from a slide's page elements.
// Placeholder types TITLE and CENTERED_TITLE become the slide title;
// everything else is body text.
func extractSlide(page *gslides.Page, number int) Slide {
	slide := Slide{Number: number}

	var bodyParts []string
	for _, element := range page.PageElements {
		if element.Shape == nil {
			continue // images etc.
		}

		text := shapeText(element.Shape)
		if text == "" {
			continue
		}

		placeholderType := ""
		if element.Shape.Placeholder != nil {
			placeholderType = element.Shape.Placeholder.Type
		}

		if placeholderType == "TITLE" || placeholderType == "CENTERED_TITLE" {
			slide.Title = text
		} else {
			bodyParts = append(bodyParts, text)
		}
	}

	slide.Body = strings.Join(bodyParts, "\n")
	return slide
}

// shapeText flattens the text runs of a shape into plain text
func shapeText(shape *gslides.Shape) string {
	if shape.Text == nil {
		return ""
	}

	var parts []string
	for _, element := range shape.Text.TextElements {
		if element.TextRun == nil {
			continue
		}
		parts = append(parts, element.TextRun.Content)
	}

	return strings.TrimSpace(strings.Join(parts, ""))
}
