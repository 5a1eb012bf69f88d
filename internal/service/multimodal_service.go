// FILE: internal/service/multimodal_service.go
package service

import (
	"context"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/pkg/multimodal"
)

// MultimodalClient is the subset of the multimodal sidecar client used here.
type MultimodalClient interface {
	Analyze(ctx context.Context, req multimodal.AnalyzeRequest) (map[string]interface{}, error)
	Transcribe(ctx context.Context, req multimodal.TranscribeRequest) (*multimodal.TranscribeResult, error)
}

type IMultimodalService interface {
	Analyze(ctx context.Context, req *dto.AnalyzeRequest) (map[string]interface{}, error)
	Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error)
}

type multimodalService struct {
	client MultimodalClient
	logger logger.ILogger
}

func NewMultimodalService(client MultimodalClient, log logger.ILogger) IMultimodalService {
	return &multimodalService{
		client: client,
		logger: log,
	}
}

func (s *multimodalService) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (map[string]interface{}, error) {
	if !req.HasMedia() {
		return nil, apperror.Validation(constant.ErrCodeMissingField, "at least one of image_url, audio_url or video_url is required")
	}

	res, err := s.client.Analyze(ctx, multimodal.AnalyzeRequest{
		ImageURL:   req.ImageURL,
		AudioURL:   req.AudioURL,
		VideoURL:   req.VideoURL,
		TopK:       req.TopK,
		CustomText: req.CustomText,
	})
	if err != nil {
		s.logger.Error("MultimodalService", "Analyze failed", map[string]interface{}{"error": err.Error()})
		return nil, unavailable(err)
	}
	return res, nil
}

func (s *multimodalService) Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error) {
	res, err := s.client.Transcribe(ctx, multimodal.TranscribeRequest{AudioURL: req.AudioURL})
	if err != nil {
		s.logger.Error("MultimodalService", "Transcribe failed", map[string]interface{}{"error": err.Error()})
		return nil, unavailable(err)
	}
	if !res.Success {
		return nil, unavailable(multimodal.ErrUnavailable)
	}
	return &dto.TranscribeResponse{Text: res.TranscribedText, Language: res.Language}, nil
}

func unavailable(err error) error {
	appErr := apperror.AgentUnavailable("multimodal service is unavailable", err)
	appErr.Code = constant.ErrCodeMultimodal
	return appErr
}
