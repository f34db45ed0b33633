package models

// Channel is a delivery channel for rendered notifications.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
)

// FieldSet selects which work-order attributes appear in rendered
// notifications.
type FieldSet struct {
	JobID          bool
	StoreName      bool
	StoreNumber    bool
	Location       bool
	Date           bool
	EquipmentCount bool
}

// AllFields is the verification preset: every attribute shown.
func AllFields() FieldSet {
	return FieldSet{
		JobID:          true,
		StoreName:      true,
		StoreNumber:    true,
		Location:       true,
		Date:           true,
		EquipmentCount: true,
	}
}

// DefaultFields is the preset applied on first subscription.
func DefaultFields() FieldSet {
	return FieldSet{
		JobID:     true,
		StoreName: true,
		Location:  true,
		Date:      true,
	}
}

// Preferences holds one subscriber's channel and display settings. Consumed
// read-only by the composer.
type Preferences struct {
	ChatID          int64
	Push            bool
	Email           bool
	SuppressLowOnly bool // skip notifications for completed-only change sets
	Fields          FieldSet
}

// DefaultPreferences returns the settings a chat gets on /start.
func DefaultPreferences(chatID int64) Preferences {
	return Preferences{
		ChatID: chatID,
		Push:   true,
		Fields: DefaultFields(),
	}
}

// Payload is one rendered notification for one channel.
type Payload struct {
	Channel Channel
	ChatID  int64
	Subject string
	Body    string
}
