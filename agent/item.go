package agent

import "github.com/hoangvvo/llm-sdk-sub003/model"

// ItemType discriminates the closed set of Agent Item variants.
type ItemType string

const (
	ItemTypeMessage ItemType = "message"
	ItemTypeModel   ItemType = "model"
	ItemTypeTool    ItemType = "tool"
)

// Item is one immutable unit of a Run's output. The ordered sequence of
// Items for a Run is the conversation a caller appends to its next
// AgentRequest.Input.
type Item interface {
	isItem()
	Type() ItemType
}

type (
	// MessageItem wraps a finished Message of any role, used to seed a Run
	// with prior conversation that was not itself produced by a model or
	// tool call within this library (e.g. the caller's own user turns).
	MessageItem struct {
		Message model.Message
	}

	// ModelItem captures the outcome of one model call: the Parts it
	// emitted, the usage and cost recorded for the call, and the exact
	// model input snapshot used to produce it.
	ModelItem struct {
		Content []model.Part
		Usage   *model.Usage
		Cost    *float64
		Input   *model.Request
	}

	// ToolItem captures the outcome of one tool execution.
	ToolItem struct {
		ToolCallID string
		ToolName   string
		Input      map[string]any
		Output     []model.Part
		IsError    bool
	}
)

func (MessageItem) isItem() {}
func (ModelItem) isItem()   {}
func (ToolItem) isItem()    {}

func (MessageItem) Type() ItemType { return ItemTypeMessage }
func (ModelItem) Type() ItemType   { return ItemTypeModel }
func (ToolItem) Type() ItemType    { return ItemTypeTool }
