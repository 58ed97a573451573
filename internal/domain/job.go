package domain

import "fmt"

// Origin distinguishes where a preview artifact came from.
type Origin string

const (
	OriginSingle Origin = "processed"
	OriginBatch  Origin = "batch"
)

// Artifact locates the two copies written for one successful job.
type Artifact struct {
	SequentialID int    `json:"sequential_id"`
	ArchiveName  string `json:"output_file"`
	PreviewID    string `json:"preview_id"`
	PreviewName  string `json:"preview_file"`
	PreviewURL   string `json:"video_url"`
	Size         int    `json:"bytes"`
}

// ArchiveName formats the durable file name for a sequence number.
func ArchiveName(id int) string {
	return fmt.Sprintf("output_%03d.mp4", id)
}

// PreviewName formats the ephemeral preview file name.
func PreviewName(origin Origin, previewID string) string {
	return fmt.Sprintf("%s_%s.mp4", origin, previewID)
}

// Outcome is the result of one job. Exactly one of Artifact or Err is set.
type Outcome struct {
	Prompt   string
	Artifact *Artifact
	Err      error
}

func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.Artifact != nil
}

// ErrorMessage returns the human-readable failure description, or "" on success.
func (o Outcome) ErrorMessage() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
