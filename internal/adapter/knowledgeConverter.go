package adapter

import (
	"github.com/hzhao/ConsultAPI/internal/api"
	"github.com/hzhao/ConsultAPI/internal/domain/knowledgeModel"
)

func ToCategoryResponse(category knowledgeModel.Category) api.CategoryResponse {
	return api.CategoryResponse{
		Id:            category.Id,
		Name:          category.Name,
		Creator:       category.Creator,
		CreatedAt:     category.CreatedAt,
		DocumentCount: category.DocumentCount,
	}
}

func ToCategoryResponses(categories []knowledgeModel.Category) []api.CategoryResponse {
	responses := make([]api.CategoryResponse, len(categories))
	for i, category := range categories {
		responses[i] = ToCategoryResponse(category)
	}
	return responses
}

func ToDocumentResponse(doc knowledgeModel.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:               doc.Id,
		Filename:         doc.Filename,
		OriginalFilename: doc.OriginalFilename,
		Type:             doc.Type,
		SizeBytes:        doc.SizeBytes,
		CategoryId:       doc.CategoryId,
		ChunkCount:       doc.ChunkCount,
		Status:           string(doc.Status),
		Creator:          doc.Creator,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

func ToDocumentPageResponse(page knowledgeModel.DocumentPage) api.DocumentPageResponse {
	items := make([]api.DocumentResponse, len(page.Items))
	for i, doc := range page.Items {
		items[i] = ToDocumentResponse(doc)
	}
	return api.DocumentPageResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}

func ToStatsResponse(stats knowledgeModel.Stats) api.StatsResponse {
	return api.StatsResponse{
		TotalCategories:  stats.TotalCategories,
		TotalDocuments:   stats.TotalDocuments,
		EnabledDocuments: stats.EnabledDocuments,
		TotalChunks:      stats.TotalChunks,
		CollectionName:   stats.CollectionName,
	}
}
