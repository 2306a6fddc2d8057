package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Origin tags who initiated a mutation. It is threaded through the mutation
// call chain and checked once at the notification/trigger dispatch point:
// only user-originated mutations produce notifications and triggers, which
// bounds automation recursion to a single pass.
type Origin string

const (
	OriginUser       Origin = "user"
	OriginAutomation Origin = "automation"
	OriginScheduled  Origin = "scheduled"
)

// Automated reports whether notification and trigger side effects are
// suppressed for this origin.
func (o Origin) Automated() bool {
	return o != OriginUser
}

// TriggerType enumerates the state changes automation rules can react to.
type TriggerType string

const (
	TriggerCardMoved  TriggerType = "card_moved"
	TriggerLabelAdded TriggerType = "label_added"
)

// Trigger is a tagged event emitted by the mutation API. Exactly one payload
// field is meaningful per type.
type Trigger struct {
	Type     TriggerType `json:"type"`
	ToListID uuid.UUID   `json:"toListId,omitempty"`
	LabelID  uuid.UUID   `json:"labelId,omitempty"`
}

// Matches reports whether the rule trigger t fires for the emitted event.
// The variant and its payload field must match exactly.
func (t Trigger) Matches(event Trigger) bool {
	if t.Type != event.Type {
		return false
	}
	switch t.Type {
	case TriggerCardMoved:
		return t.ToListID == event.ToListID
	case TriggerLabelAdded:
		return t.LabelID == event.LabelID
	default:
		return false
	}
}

// ActionType enumerates the follow-up mutations automation can apply.
type ActionType string

const (
	ActionMoveToList     ActionType = "move_to_list"
	ActionSetDueComplete ActionType = "set_due_complete"
	ActionAddChecklist   ActionType = "add_checklist"
	ActionPostComment    ActionType = "post_comment"
	ActionAddMember      ActionType = "add_member"
	ActionAddLabel       ActionType = "add_label"
)

// Action is a closed tagged variant: each kind reads exactly the fields it
// requires, validated at construction time rather than at execution time.
type Action struct {
	Type      ActionType `json:"type"`
	ListID    uuid.UUID  `json:"listId,omitempty"`
	Completed bool       `json:"completed,omitempty"`
	Title     string     `json:"title,omitempty"`
	Text      string     `json:"text,omitempty"`
	MemberID  uuid.UUID  `json:"memberId,omitempty"`
	LabelID   uuid.UUID  `json:"labelId,omitempty"`
}

func NewMoveToListAction(listID uuid.UUID) Action {
	return Action{Type: ActionMoveToList, ListID: listID}
}

func NewSetDueCompleteAction(completed bool) Action {
	return Action{Type: ActionSetDueComplete, Completed: completed}
}

func NewAddChecklistAction(title string) Action {
	return Action{Type: ActionAddChecklist, Title: title}
}

func NewPostCommentAction(text string) Action {
	return Action{Type: ActionPostComment, Text: text}
}

func NewAddMemberAction(memberID uuid.UUID) Action {
	return Action{Type: ActionAddMember, MemberID: memberID}
}

func NewAddLabelAction(labelID uuid.UUID) Action {
	return Action{Type: ActionAddLabel, LabelID: labelID}
}

// Validate checks that the action carries the field its kind requires.
func (a Action) Validate() error {
	switch a.Type {
	case ActionMoveToList:
		if a.ListID == uuid.Nil {
			return fmt.Errorf("move_to_list action requires a list id")
		}
	case ActionSetDueComplete:
		// The completed flag is always valid.
	case ActionAddChecklist:
		if a.Title == "" {
			return fmt.Errorf("add_checklist action requires a title")
		}
	case ActionPostComment:
		if a.Text == "" {
			return fmt.Errorf("post_comment action requires text")
		}
	case ActionAddMember:
		if a.MemberID == uuid.Nil {
			return fmt.Errorf("add_member action requires a member id")
		}
	case ActionAddLabel:
		if a.LabelID == uuid.Nil {
			return fmt.Errorf("add_label action requires a label id")
		}
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}

// AutomationRule reacts to a trigger with a single action.
type AutomationRule struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Enabled bool      `json:"enabled"`
	Trigger Trigger   `json:"trigger"`
	Action  Action    `json:"action"`
}

// ScheduledCommand applies an action to every card of its target list on a
// cron schedule.
type ScheduledCommand struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Enabled      bool      `json:"enabled"`
	Schedule     string    `json:"schedule"`
	TargetListID uuid.UUID `json:"targetListId"`
	Action       Action    `json:"action"`
}

// CardButton applies its action to the card it is pressed on.
type CardButton struct {
	ID     uuid.UUID `json:"id"`
	Label  string    `json:"label"`
	Action Action    `json:"action"`
}

// BoardButton applies its action to every card of its target list.
type BoardButton struct {
	ID           uuid.UUID `json:"id"`
	Label        string    `json:"label"`
	TargetListID uuid.UUID `json:"targetListId"`
	Action       Action    `json:"action"`
}

// AutomationConfig is the user-edited automation document. It is read-only
// to the engine at trigger time.
type AutomationConfig struct {
	Rules             []AutomationRule   `json:"rules"`
	ScheduledCommands []ScheduledCommand `json:"scheduledCommands"`
	CardButtons       []CardButton       `json:"cardButtons"`
	BoardButtons      []BoardButton      `json:"boardButtons"`
}

// Normalize back-fills nil collections with empty ones so a freshly loaded
// or partially specified document is always safe to iterate.
func (c *AutomationConfig) Normalize() {
	if c.Rules == nil {
		c.Rules = []AutomationRule{}
	}
	if c.ScheduledCommands == nil {
		c.ScheduledCommands = []ScheduledCommand{}
	}
	if c.CardButtons == nil {
		c.CardButtons = []CardButton{}
	}
	if c.BoardButtons == nil {
		c.BoardButtons = []BoardButton{}
	}
}
