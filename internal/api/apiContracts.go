package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

// responses---------------------

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type IngestResponse struct {
	DocumentId string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

type Result struct {
	Status          string          `json:"status"`
	IngestedOutcome *IngestResponse `json:"ingest_result,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type ConsultResponse struct {
	ConversationId    string   `json:"conversation_id"`
	Response          string   `json:"response"`
	Sources           []string `json:"sources"`
	NeedMoreInfo      bool     `json:"need_more_info"`
	CollectedSymptoms []string `json:"collected_symptoms"`
}

type ConversationSummary struct {
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

type TurnResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sources   []string  `json:"sources,omitempty"`
}

type ConversationDetail struct {
	Id        string         `json:"id"`
	Title     string         `json:"title"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Messages  []TurnResponse `json:"messages"`
}

type CategoryResponse struct {
	Id            string    `json:"id"`
	Name          string    `json:"name"`
	Creator       string    `json:"creator,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	DocumentCount int       `json:"document_count"`
}

type DocumentResponse struct {
	Id               string    `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	Type             string    `json:"type"`
	SizeBytes        int64     `json:"size_bytes"`
	CategoryId       string    `json:"category_id"`
	ChunkCount       int       `json:"chunk_count"`
	Status           string    `json:"status"`
	Creator          string    `json:"creator,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type DocumentPageResponse struct {
	Items      []DocumentResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

type StatsResponse struct {
	TotalCategories  int    `json:"total_categories"`
	TotalDocuments   int    `json:"total_documents"`
	EnabledDocuments int    `json:"enabled_documents"`
	TotalChunks      int    `json:"total_chunks"`
	CollectionName   string `json:"collection_name"`
}

// requests---------------------

type ConsultRequest struct {
	Message        string `json:"message" validate:"required"`
	ConversationId string `json:"conversation_id,omitempty"`
}

type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type RenameRequest struct {
	Name string `json:"name" validate:"required"`
}

type MigrateRequest struct {
	CategoryId string `json:"category_id" validate:"required"`
}

type ContentUpdateRequest struct {
	Content string `json:"content" validate:"required"`
}

type TitleRequest struct {
	Title string `json:"title" validate:"required"`
}
