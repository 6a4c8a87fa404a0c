package agent

import (
	"encoding/json"

	"github.com/hoangvvo/llm-sdk-sub003/apierror"
	"github.com/hoangvvo/llm-sdk-sub003/model"
)

// wire JSON shapes for AgentItem and AgentStreamEvent (spec.md §6.3): both
// are tagged variants, following the discriminator pattern model/json.go
// establishes for Part/Message/ContentDelta.

type wireMessageItem struct {
	Type    ItemType      `json:"type"`
	Message model.Message `json:"message"`
}

type wireModelItem struct {
	Type    ItemType          `json:"type"`
	Content []json.RawMessage `json:"content"`
	Usage   *model.Usage      `json:"usage,omitempty"`
	Cost    *float64          `json:"cost,omitempty"`
}

type wireToolItem struct {
	Type       ItemType          `json:"type"`
	ToolCallID string            `json:"tool_call_id"`
	ToolName   string            `json:"tool_name"`
	Input      map[string]any    `json:"input"`
	Output     []json.RawMessage `json:"output"`
	IsError    bool              `json:"is_error,omitempty"`
}

// EncodeItem renders it in the normative wire shape (spec.md §3.5, §6.3).
func EncodeItem(it Item) (json.RawMessage, error) {
	switch v := it.(type) {
	case MessageItem:
		return json.Marshal(wireMessageItem{Type: ItemTypeMessage, Message: v.Message})
	case ModelItem:
		content, err := encodeItemParts(v.Content)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireModelItem{Type: ItemTypeModel, Content: content, Usage: v.Usage, Cost: v.Cost})
	case ToolItem:
		output, err := encodeItemParts(v.Output)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireToolItem{
			Type: ItemTypeTool, ToolCallID: v.ToolCallID, ToolName: v.ToolName,
			Input: v.Input, Output: output, IsError: v.IsError,
		})
	default:
		return nil, apierror.Invariantf("agent: unknown item type %T", it)
	}
}

// DecodeItem parses raw into the concrete Item its "type" discriminator
// names.
func DecodeItem(raw json.RawMessage) (Item, error) {
	var disc struct {
		Type ItemType `json:"type"`
	}
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, apierror.Invariant("agent: malformed item", err)
	}
	switch disc.Type {
	case ItemTypeMessage:
		var w wireMessageItem
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, apierror.Invariant("agent: malformed message item", err)
		}
		return MessageItem{Message: w.Message}, nil
	case ItemTypeModel:
		var w wireModelItem
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, apierror.Invariant("agent: malformed model item", err)
		}
		content, err := decodeItemParts(w.Content)
		if err != nil {
			return nil, err
		}
		return ModelItem{Content: content, Usage: w.Usage, Cost: w.Cost}, nil
	case ItemTypeTool:
		var w wireToolItem
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, apierror.Invariant("agent: malformed tool item", err)
		}
		output, err := decodeItemParts(w.Output)
		if err != nil {
			return nil, err
		}
		return ToolItem{ToolCallID: w.ToolCallID, ToolName: w.ToolName, Input: w.Input, Output: output, IsError: w.IsError}, nil
	default:
		return nil, apierror.Invariantf("agent: unknown item type %q", disc.Type)
	}
}

func encodeItemParts(parts []model.Part) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(parts))
	for i, p := range parts {
		raw, err := model.EncodePart(p)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return out, nil
}

func decodeItemParts(raws []json.RawMessage) ([]model.Part, error) {
	out := make([]model.Part, len(raws))
	for i, raw := range raws {
		p, err := model.DecodePart(raw)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

type wirePartialEvent struct {
	Type  StreamEventType   `json:"type"`
	Delta *model.ContentDelta `json:"delta"`
}

type wireItemEvent struct {
	Type StreamEventType `json:"type"`
	Item json.RawMessage `json:"item"`
}

type wireResponseEvent struct {
	Type     StreamEventType `json:"type"`
	Response json.RawMessage `json:"response"`
}

// MarshalJSON renders the StreamEvent in the normative tagged-variant wire
// shape (spec.md §6.3): partial | item | response.
func (e StreamEvent) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case StreamEventTypePartial:
		return json.Marshal(wirePartialEvent{Type: StreamEventTypePartial, Delta: e.Delta})
	case StreamEventTypeItem:
		item, err := EncodeItem(e.Item)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireItemEvent{Type: StreamEventTypeItem, Item: item})
	case StreamEventTypeResponse:
		resp, err := json.Marshal(e.Response)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireResponseEvent{Type: StreamEventTypeResponse, Response: resp})
	default:
		return nil, apierror.Invariantf("agent: unknown stream event type %q", e.Type)
	}
}

// UnmarshalJSON parses the normative tagged-variant wire shape into e.
func (e *StreamEvent) UnmarshalJSON(data []byte) error {
	var disc struct {
		Type StreamEventType `json:"type"`
	}
	if err := json.Unmarshal(data, &disc); err != nil {
		return apierror.Invariant("agent: malformed stream event", err)
	}
	switch disc.Type {
	case StreamEventTypePartial:
		var w wirePartialEvent
		if err := json.Unmarshal(data, &w); err != nil {
			return apierror.Invariant("agent: malformed partial event", err)
		}
		e.Type = StreamEventTypePartial
		e.Delta = w.Delta
		return nil
	case StreamEventTypeItem:
		var w wireItemEvent
		if err := json.Unmarshal(data, &w); err != nil {
			return apierror.Invariant("agent: malformed item event", err)
		}
		item, err := DecodeItem(w.Item)
		if err != nil {
			return err
		}
		e.Type = StreamEventTypeItem
		e.Item = item
		return nil
	case StreamEventTypeResponse:
		var w wireResponseEvent
		if err := json.Unmarshal(data, &w); err != nil {
			return apierror.Invariant("agent: malformed response event", err)
		}
		var resp Response
		if err := json.Unmarshal(w.Response, &resp); err != nil {
			return err
		}
		e.Type = StreamEventTypeResponse
		e.Response = &resp
		return nil
	default:
		return apierror.Invariantf("agent: unknown stream event type %q", disc.Type)
	}
}

type wireResponse struct {
	Output  []json.RawMessage `json:"output"`
	Content []json.RawMessage `json:"content"`
}

// MarshalJSON renders the Response in the normative wire shape.
func (r Response) MarshalJSON() ([]byte, error) {
	output := make([]json.RawMessage, len(r.Output))
	for i, it := range r.Output {
		raw, err := EncodeItem(it)
		if err != nil {
			return nil, err
		}
		output[i] = raw
	}
	content, err := encodeItemParts(r.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireResponse{Output: output, Content: content})
}

// UnmarshalJSON parses the normative wire shape into r.
func (r *Response) UnmarshalJSON(data []byte) error {
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return apierror.Invariant("agent: malformed response", err)
	}
	output := make([]Item, len(w.Output))
	for i, raw := range w.Output {
		it, err := DecodeItem(raw)
		if err != nil {
			return err
		}
		output[i] = it
	}
	content, err := decodeItemParts(w.Content)
	if err != nil {
		return err
	}
	r.Output = output
	r.Content = content
	return nil
}
