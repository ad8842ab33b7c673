package dto

type UploadImageResponse struct {
	URL      string `json:"url"`
	FileType string `json:"file_type"`
	Size     int64  `json:"size"`
}

type DeleteImageRequest struct {
	URL string `json:"url" binding:"required,url"`
}
