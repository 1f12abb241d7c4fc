package driver

// Action is one protocol-level operation executed over a live connection.
// The set is closed: every value is declared in this file and drivers
// switch on the concrete type. Destination fields hold canonical network
// addresses; normalization of bare numbers happens before an action
// reaches the driver.
type Action interface {
	actionKind() string
}

// Kind returns a stable name for an action, used for logging and metrics.
func Kind(a Action) string {
	if a == nil {
		return "none"
	}
	return a.actionKind()
}

// MediaKind selects the payload shape of a SendMedia action.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
	MediaSticker  MediaKind = "sticker"
)

// GroupMemberOp selects a group membership mutation.
type GroupMemberOp string

const (
	GroupAdd     GroupMemberOp = "add"
	GroupRemove  GroupMemberOp = "remove"
	GroupPromote GroupMemberOp = "promote"
	GroupDemote  GroupMemberOp = "demote"
)

// SendText delivers a plain text message.
type SendText struct {
	To   string
	Text string
}

// SendMedia delivers image, video, audio, document or sticker content
// referenced by URL.
type SendMedia struct {
	To       string
	Kind     MediaKind
	URL      string
	Caption  string
	FileName string
	MimeType string
	Voice    bool // push-to-talk audio
}

// SendLocation delivers a location pin.
type SendLocation struct {
	To        string
	Latitude  float64
	Longitude float64
	Name      string
	Address   string
}

// SendContact delivers a contact card.
type SendContact struct {
	To            string
	ContactName   string
	ContactNumber string
	VCard         string
}

// Button is one choice of a SendButtons action.
type Button struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// SendButtons delivers an interactive button message.
type SendButtons struct {
	To       string
	Text     string
	Footer   string
	Buttons  []Button
	ImageURL string
}

// ListSection groups rows of a SendList action.
type ListSection struct {
	Title string    `json:"title"`
	Rows  []ListRow `json:"rows"`
}

// ListRow is one selectable row of a list message.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// SendList delivers an interactive list message.
type SendList struct {
	To         string
	Text       string
	Title      string
	Footer     string
	ButtonText string
	Sections   []ListSection
}

// SendPoll delivers a single-choice poll.
type SendPoll struct {
	To       string
	Question string
	Options  []string
}

// Reply delivers a text message quoting an earlier one.
type Reply struct {
	To        string
	MessageID string
	Text      string
}

// Forward forwards an existing message to another chat.
type Forward struct {
	To        string
	From      string
	MessageID string
}

// DeleteMessage retracts a previously sent message.
type DeleteMessage struct {
	Chat        string
	MessageID   string
	ForEveryone bool
}

// React attaches an emoji reaction to a message.
type React struct {
	Chat      string
	MessageID string
	Emoji     string
}

// GroupCreate creates a group with the given participants.
type GroupCreate struct {
	Name         string
	Participants []string
}

// GroupMembers mutates group membership or participant roles.
type GroupMembers struct {
	GroupID      string
	Op           GroupMemberOp
	Participants []string
}

// GroupInfo fetches group metadata.
type GroupInfo struct {
	GroupID string
}

// GroupSubject renames a group.
type GroupSubject struct {
	GroupID string
	Subject string
}

// GroupDescription updates a group's description.
type GroupDescription struct {
	GroupID     string
	Description string
}

// GroupLeave leaves a group.
type GroupLeave struct {
	GroupID string
}

// GroupInviteLink fetches the group's invite link, optionally revoking the
// previous one first.
type GroupInviteLink struct {
	GroupID string
	Revoke  bool
}

// GroupAcceptInvite joins a group via an invite code.
type GroupAcceptInvite struct {
	Code string
}

// CheckNumber asks whether a number is registered on the network.
type CheckNumber struct {
	Target string
}

// ProfilePicture fetches the profile picture URL of a contact.
type ProfilePicture struct {
	Target string
}

// SetProfilePicture replaces the session account's own picture.
type SetProfilePicture struct {
	Image []byte
}

// SetProfileStatus replaces the session account's status text.
type SetProfileStatus struct {
	Status string
}

// BusinessProfile fetches the business profile of a contact.
type BusinessProfile struct {
	Target string
}

// PresenceSubscribe subscribes to a contact's presence updates.
type PresenceSubscribe struct {
	Target string
}

// SetPresence publishes global presence ("available", "unavailable").
type SetPresence struct {
	Presence string
}

// ChatPresence publishes a typing or recording indicator to one chat.
type ChatPresence struct {
	Chat      string
	Kind      string // "composing", "recording" or "paused"
	Recording bool
}

// MarkRead sends a read receipt for a message.
type MarkRead struct {
	Chat      string
	MessageID string
}

// BlockUpdate blocks or unblocks a contact.
type BlockUpdate struct {
	Target string
	Block  bool
}

func (SendText) actionKind() string          { return "send_text" }
func (a SendMedia) actionKind() string       { return "send_" + string(a.Kind) }
func (SendLocation) actionKind() string      { return "send_location" }
func (SendContact) actionKind() string       { return "send_contact" }
func (SendButtons) actionKind() string       { return "send_buttons" }
func (SendList) actionKind() string          { return "send_list" }
func (SendPoll) actionKind() string          { return "send_poll" }
func (Reply) actionKind() string             { return "reply" }
func (Forward) actionKind() string           { return "forward" }
func (DeleteMessage) actionKind() string     { return "delete_message" }
func (React) actionKind() string             { return "react" }
func (GroupCreate) actionKind() string       { return "group_create" }
func (a GroupMembers) actionKind() string    { return "group_" + string(a.Op) }
func (GroupInfo) actionKind() string         { return "group_info" }
func (GroupSubject) actionKind() string      { return "group_subject" }
func (GroupDescription) actionKind() string  { return "group_description" }
func (GroupLeave) actionKind() string        { return "group_leave" }
func (GroupInviteLink) actionKind() string   { return "group_invite_link" }
func (GroupAcceptInvite) actionKind() string { return "group_accept_invite" }
func (CheckNumber) actionKind() string       { return "check_number" }
func (ProfilePicture) actionKind() string    { return "profile_picture" }
func (SetProfilePicture) actionKind() string { return "set_profile_picture" }
func (SetProfileStatus) actionKind() string  { return "set_profile_status" }
func (BusinessProfile) actionKind() string   { return "business_profile" }
func (PresenceSubscribe) actionKind() string { return "presence_subscribe" }
func (SetPresence) actionKind() string       { return "set_presence" }
func (ChatPresence) actionKind() string      { return "chat_presence" }
func (MarkRead) actionKind() string          { return "mark_read" }
func (BlockUpdate) actionKind() string       { return "block_update" }

// Result is the action-specific outcome of a successful Execute call.
// Fields irrelevant to the executed action are left zero.
type Result struct {
	MessageID  string         `json:"message_id,omitempty"`
	GroupID    string         `json:"group_id,omitempty"`
	InviteLink string         `json:"invite_link,omitempty"`
	Exists     bool           `json:"exists,omitempty"`
	Address    string         `json:"address,omitempty"`
	URL        string         `json:"url,omitempty"`
	Info       map[string]any `json:"info,omitempty"`
}
