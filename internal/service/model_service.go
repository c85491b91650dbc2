package service

import (
	"slices"
	"sort"
)

// BackendInfo describes one generation backend for GET /models.
type BackendInfo struct {
	Backend       string   `json:"backend" example:"onnx-gpt2"`
	Endpoint      string   `json:"endpoint" example:"/chat/onnx-gpt2"`
	AllowedModels []string `json:"allowedModels,omitempty"`
	Sampling      string   `json:"sampling" example:"greedy"`
	MaxNewTokens  int      `json:"maxNewTokens" example:"20"`
	Streaming     bool     `json:"streaming"`
	Loaded        bool     `json:"loaded"`
}

// EngineLister reports which backends exist and which are loaded.
type EngineLister interface {
	Backends() []string
	Loaded() []string
}

type ModelService struct {
	engines EngineLister
}

func NewModelService(engines EngineLister) *ModelService {
	return &ModelService{engines: engines}
}

// List describes every endpoint whose backend is registered.
func (s *ModelService) List() []BackendInfo {
	registered := s.engines.Backends()
	loaded := s.engines.Loaded()

	infos := []BackendInfo{}
	for ep, cfg := range endpoints {
		if !slices.Contains(registered, cfg.Backend) {
			continue
		}
		path := "/chat/" + string(ep)
		if ep == EndpointChat {
			path = "/chat"
		}
		infos = append(infos, BackendInfo{
			Backend:       cfg.Backend,
			Endpoint:      path,
			AllowedModels: cfg.AllowedModels,
			Sampling:      cfg.Sampling.String(),
			MaxNewTokens:  cfg.MaxNewTokens,
			Streaming:     ep == EndpointChat,
			Loaded:        slices.Contains(loaded, cfg.Backend),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Backend < infos[j].Backend })
	return infos
}
