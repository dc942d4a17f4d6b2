package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/kaptinlin/jsonrepair"

	"github.com/docugraph/docugraph/pkg/types"
)

// ErrUnparsableResponse is returned when no parse strategy recovers a valid
// window result from the model output.
var ErrUnparsableResponse = errors.New("could not parse window result from model response")

var thinkTagRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// RemoveThinkTags removes <think> blocks emitted by reasoning models.
func RemoveThinkTags(input string) string {
	return thinkTagRe.ReplaceAllString(input, "")
}

// ExtractJSONFromResponse pulls the JSON payload out of a response that may
// wrap it in markdown code fences or surrounding prose.
func ExtractJSONFromResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.Contains(response, "```json") {
		start := strings.Index(response, "```json")
		end := strings.Index(response[start+7:], "```")
		if end != -1 {
			return strings.TrimSpace(response[start+7 : start+7+end])
		}
	}

	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		if len(lines) > 2 {
			return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
		}
	}

	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")
	if jsonStart != -1 && jsonEnd != -1 && jsonEnd > jsonStart {
		return response[jsonStart : jsonEnd+1]
	}

	return response
}

// ParseWindowResult parses a model response into a WindowResult. It tries a
// direct unmarshal first, then cleans the response, then repairs the JSON.
func ParseWindowResult(response string) (*types.WindowResult, error) {
	if result, err := unmarshalWindowResult(response); err == nil {
		return result, nil
	}

	cleaned := ExtractJSONFromResponse(RemoveThinkTags(response))
	if result, err := unmarshalWindowResult(cleaned); err == nil {
		return result, nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}
	result, err := unmarshalWindowResult(repaired)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}
	return result, nil
}

func unmarshalWindowResult(payload string) (*types.WindowResult, error) {
	var result types.WindowResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
