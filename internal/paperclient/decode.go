// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package paperclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/ragscholar/pkg/types"
)

// DecodeAnalysis resolves a POST /analyze body into an AnalysisResult.
//
// The backend has answered in two shapes: an object
// {"explanation": ..., "relatedPapers": [...]} and a bare array of papers
// (or of {"paper", "score"} entries). An empty body or JSON null decodes as
// an explained result with nothing in it.
func DecodeAnalysis(data []byte) (types.AnalysisResult, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return types.AnalysisResult{Kind: types.AnalysisExplained}, nil
	}

	switch data[0] {
	case '[':
		var related []types.RelatedPaper
		if err := json.Unmarshal(data, &related); err != nil {
			return types.AnalysisResult{}, fmt.Errorf("decoding analysis list: %w", err)
		}
		return types.AnalysisResult{Kind: types.AnalysisList, RelatedPapers: related}, nil

	case '{':
		var obj struct {
			Explanation   string               `json:"explanation"`
			RelatedPapers []types.RelatedPaper `json:"relatedPapers"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return types.AnalysisResult{}, fmt.Errorf("decoding analysis object: %w", err)
		}
		return types.AnalysisResult{
			Kind:          types.AnalysisExplained,
			Explanation:   obj.Explanation,
			RelatedPapers: obj.RelatedPapers,
		}, nil
	}

	return types.AnalysisResult{}, fmt.Errorf("unexpected analysis payload starting with %q", data[0])
}
