package agent

import "github.com/hoangvvo/llm-sdk-sub003/model"

// StreamEventType discriminates the closed set of AgentStreamEvent variants.
type StreamEventType string

const (
	StreamEventTypePartial  StreamEventType = "partial"
	StreamEventTypeItem     StreamEventType = "item"
	StreamEventTypeResponse StreamEventType = "response"
)

// StreamEvent is one element of the event sequence a Run emits. Within one
// turn, all partial events precede the item event for the model call, which
// precedes the item events for that turn's tool executions (in completion
// order); the response event is emitted once, last, when the Run ends.
type StreamEvent struct {
	Type StreamEventType

	// Delta is set when Type is StreamEventTypePartial.
	Delta *model.ContentDelta

	// Item is set when Type is StreamEventTypeItem.
	Item Item

	// Response is set when Type is StreamEventTypeResponse.
	Response *Response
}

// Response is the final outcome of a Run, carried by the terminal
// StreamEventTypeResponse event and returned directly by Run (the
// non-streaming entry point).
type Response struct {
	// Output is every Item produced during the Run, in emission order.
	Output []Item
	// Content is the last assistant turn's Parts.
	Content []model.Part
}

func partialEvent(d model.ContentDelta) StreamEvent {
	return StreamEvent{Type: StreamEventTypePartial, Delta: &d}
}

func itemEvent(item Item) StreamEvent {
	return StreamEvent{Type: StreamEventTypeItem, Item: item}
}

func responseEvent(resp *Response) StreamEvent {
	return StreamEvent{Type: StreamEventTypeResponse, Response: resp}
}
