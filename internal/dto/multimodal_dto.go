package dto

type AnalyzeRequest struct {
	ImageURL   string `json:"image_url" validate:"omitempty,url"`
	AudioURL   string `json:"audio_url" validate:"omitempty,url"`
	VideoURL   string `json:"video_url" validate:"omitempty,url"`
	TopK       int    `json:"top_k" validate:"omitempty,min=1,max=20"`
	CustomText string `json:"custom_text" validate:"omitempty,max=500"`
}

func (r *AnalyzeRequest) HasMedia() bool {
	return r.ImageURL != "" || r.AudioURL != "" || r.VideoURL != ""
}

type TranscribeRequest struct {
	AudioURL string `json:"audio_url" validate:"required,url"`
}

type TranscribeResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}
