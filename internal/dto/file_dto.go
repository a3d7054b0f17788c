package dto

type FileResp struct {
	Bucket   string `json:"bucket"`
	Object   string `json:"object"`
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
}
