package handler

import (
	"fmt"
	"net/http"

	"github.com/Fatihur/api-baru/internal/driver"
)

// SendMessage handles POST /api/send-message.
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number  string `json:"number"`
		Message string `json:"message"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" || req.Message == "" {
		h.errorHandler.WriteValidationError(w, "number and message are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.SendText{To: req.Number, Text: req.Message})
}

// mediaRequest is the shared body shape of media send endpoints.
type mediaRequest struct {
	Number   string `json:"number"`
	URL      string `json:"url"`
	Caption  string `json:"caption"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimetype"`
	PTT      bool   `json:"ptt"`
}

func (h *Handlers) sendMedia(w http.ResponseWriter, r *http.Request, kind driver.MediaKind) {
	var req mediaRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" || req.URL == "" {
		h.errorHandler.WriteValidationError(w, "number and url are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.SendMedia{
		To:       req.Number,
		Kind:     kind,
		URL:      req.URL,
		Caption:  req.Caption,
		FileName: req.FileName,
		MimeType: req.MimeType,
		Voice:    req.PTT,
	})
}

// SendImage handles POST /api/send-image.
func (h *Handlers) SendImage(w http.ResponseWriter, r *http.Request) {
	h.sendMedia(w, r, driver.MediaImage)
}

// SendVideo handles POST /api/send-video.
func (h *Handlers) SendVideo(w http.ResponseWriter, r *http.Request) {
	h.sendMedia(w, r, driver.MediaVideo)
}

// SendAudio handles POST /api/send-audio.
func (h *Handlers) SendAudio(w http.ResponseWriter, r *http.Request) {
	h.sendMedia(w, r, driver.MediaAudio)
}

// SendDocument handles POST /api/send-document.
func (h *Handlers) SendDocument(w http.ResponseWriter, r *http.Request) {
	h.sendMedia(w, r, driver.MediaDocument)
}

// SendSticker handles POST /api/send-sticker.
func (h *Handlers) SendSticker(w http.ResponseWriter, r *http.Request) {
	h.sendMedia(w, r, driver.MediaSticker)
}

// SendLocation handles POST /api/send-location.
func (h *Handlers) SendLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number    string  `json:"number"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
		Address   string  `json:"address"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" {
		h.errorHandler.WriteValidationError(w, "number is required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.SendLocation{
		To:        req.Number,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Name:      req.Name,
		Address:   req.Address,
	})
}

// SendContact handles POST /api/send-contact. The vCard is synthesized
// from the contact fields.
func (h *Handlers) SendContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number        string `json:"number"`
		ContactName   string `json:"contactName"`
		ContactNumber string `json:"contactNumber"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" || req.ContactName == "" || req.ContactNumber == "" {
		h.errorHandler.WriteValidationError(w, "number, contactName and contactNumber are required", r.Header.Get("X-Request-ID"))
		return
	}

	vcard := fmt.Sprintf(
		"BEGIN:VCARD\nVERSION:3.0\nFN:%s\nTEL;type=CELL;type=VOICE;waid=%s:+%s\nEND:VCARD",
		req.ContactName, req.ContactNumber, req.ContactNumber,
	)

	h.execute(w, r, driver.SendContact{
		To:            req.Number,
		ContactName:   req.ContactName,
		ContactNumber: req.ContactNumber,
		VCard:         vcard,
	})
}

// SendButtons handles POST /api/send-buttons.
func (h *Handlers) SendButtons(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number   string          `json:"number"`
		Text     string          `json:"text"`
		Footer   string          `json:"footer"`
		Buttons  []driver.Button `json:"buttons"`
		ImageURL string          `json:"imageUrl"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" || req.Text == "" || len(req.Buttons) == 0 {
		h.errorHandler.WriteValidationError(w, "number, text and buttons are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.SendButtons{
		To:       req.Number,
		Text:     req.Text,
		Footer:   req.Footer,
		Buttons:  req.Buttons,
		ImageURL: req.ImageURL,
	})
}

// SendList handles POST /api/send-list.
func (h *Handlers) SendList(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number     string               `json:"number"`
		Text       string               `json:"text"`
		Title      string               `json:"title"`
		Footer     string               `json:"footer"`
		ButtonText string               `json:"buttonText"`
		Sections   []driver.ListSection `json:"sections"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" || req.Text == "" || req.ButtonText == "" || len(req.Sections) == 0 {
		h.errorHandler.WriteValidationError(w, "number, text, buttonText and sections are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.SendList{
		To:         req.Number,
		Text:       req.Text,
		Title:      req.Title,
		Footer:     req.Footer,
		ButtonText: req.ButtonText,
		Sections:   req.Sections,
	})
}

// SendPoll handles POST /api/send-poll.
func (h *Handlers) SendPoll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number   string   `json:"number"`
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" || req.Question == "" || len(req.Options) < 2 {
		h.errorHandler.WriteValidationError(w, "number, question and at least two options are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.SendPoll{
		To:       req.Number,
		Question: req.Question,
		Options:  req.Options,
	})
}

// ReplyMessage handles POST /api/reply-message.
func (h *Handlers) ReplyMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number    string `json:"number"`
		MessageID string `json:"messageId"`
		Text      string `json:"text"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" || req.MessageID == "" || req.Text == "" {
		h.errorHandler.WriteValidationError(w, "number, messageId and text are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.Reply{To: req.Number, MessageID: req.MessageID, Text: req.Text})
}

// ForwardMessage handles POST /api/forward-message.
func (h *Handlers) ForwardMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ToNumber   string `json:"toNumber"`
		FromNumber string `json:"fromNumber"`
		MessageID  string `json:"messageId"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.ToNumber == "" || req.FromNumber == "" || req.MessageID == "" {
		h.errorHandler.WriteValidationError(w, "toNumber, fromNumber and messageId are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.Forward{To: req.ToNumber, From: req.FromNumber, MessageID: req.MessageID})
}

// DeleteMessage handles POST /api/delete-message.
func (h *Handlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number      string `json:"number"`
		MessageID   string `json:"messageId"`
		ForEveryone *bool  `json:"forEveryone"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" || req.MessageID == "" {
		h.errorHandler.WriteValidationError(w, "number and messageId are required", r.Header.Get("X-Request-ID"))
		return
	}

	forEveryone := true
	if req.ForEveryone != nil {
		forEveryone = *req.ForEveryone
	}

	h.execute(w, r, driver.DeleteMessage{Chat: req.Number, MessageID: req.MessageID, ForEveryone: forEveryone})
}

// ReactMessage handles POST /api/react-message.
func (h *Handlers) ReactMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number    string `json:"number"`
		MessageID string `json:"messageId"`
		Emoji     string `json:"emoji"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" || req.MessageID == "" || req.Emoji == "" {
		h.errorHandler.WriteValidationError(w, "number, messageId and emoji are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.React{Chat: req.Number, MessageID: req.MessageID, Emoji: req.Emoji})
}
