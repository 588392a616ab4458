package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"mixnet/internal/model"
	mixapi "mixnet/pkg/mixnet"
)

func loadBuildRequestFromConfig(path string) (mixapi.BuildRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mixapi.BuildRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return mixapi.BuildRequest{}, err
	}

	var req mixapi.BuildRequest
	if v, ok := asString(raw["checkpoint_id"]); ok {
		req.CheckpointID = v
	}
	if v, ok := asString(raw["variant"]); ok {
		req.Variant = v
	}
	if v, ok := asInt(raw["dim_t"]); ok {
		req.DimT = v
	}
	if v, ok := asInt(raw["dim_x"]); ok {
		req.DimX = v
	}
	if v, ok := asInt(raw["dim_u"]); ok {
		req.DimU = v
	}
	if v, ok := asInt(raw["num_experts"]); ok {
		req.NumExperts = v
	}
	if v, ok := asString(raw["activation"]); ok {
		req.Activation = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	return req, nil
}

type evalInput struct {
	T [][]float64 `json:"t"`
	X [][]float64 `json:"x"`
}

func loadEvalInput(path string) ([][]float64, [][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var input evalInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, nil, err
	}
	if len(input.T) == 0 || len(input.X) == 0 {
		return nil, nil, fmt.Errorf("input file %s must carry non-empty t and x batches", path)
	}
	return input.T, input.X, nil
}

func loadPolicyParams(path string) (model.PolicyParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PolicyParams{}, err
	}
	var params model.PolicyParams
	if err := json.Unmarshal(data, &params); err != nil {
		return model.PolicyParams{}, err
	}
	return params, nil
}

func asString(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func asInt64(value any) (int64, bool) {
	v, ok := asInt(value)
	if !ok {
		return 0, false
	}
	return int64(v), true
}
