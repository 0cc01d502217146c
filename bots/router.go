// Package bots routes inbound chat updates to per-persona command handlers.
package bots

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gem-enterprise/gemhub/automation"
	"github.com/gem-enterprise/gemhub/messenger"
	"github.com/gem-enterprise/gemhub/store"
)

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// DisplayName prefers the username, then the first name, then the numeric id.
func (u User) DisplayName() string {
	switch {
	case u.Username != "":
		return u.Username
	case u.FirstName != "":
		return u.FirstName
	default:
		return strconv.FormatInt(u.ID, 10)
	}
}

// Update is one inbound chat message, reduced to what handlers need.
type Update struct {
	ChatID int64
	Text   string
	From   User
}

type telegramMessage struct {
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	From User   `json:"from"`
	Text string `json:"text"`
}

type telegramUpdate struct {
	UpdateID      int64            `json:"update_id"`
	Message       *telegramMessage `json:"message"`
	EditedMessage *telegramMessage `json:"edited_message"`
	ChannelPost   *telegramMessage `json:"channel_post"`
}

// DecodeUpdate reads a Bot API update. Updates carrying no message decode to an empty Update.
func DecodeUpdate(data []byte) (Update, error) {
	var raw telegramUpdate
	if err := json.Unmarshal(data, &raw); err != nil {
		return Update{}, err
	}
	msg := raw.Message
	if msg == nil {
		msg = raw.EditedMessage
	}
	if msg == nil {
		msg = raw.ChannelPost
	}
	if msg == nil {
		return Update{}, nil
	}
	return Update{ChatID: msg.Chat.ID, Text: msg.Text, From: msg.From}, nil
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// CommandResult is what a dispatch reports back to the webhook caller.
type CommandResult struct {
	Status  string `json:"status"`
	Persona string `json:"bot"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

func success(action string) CommandResult {
	return CommandResult{Status: StatusSuccess, Action: action}
}

func failure(action, message string) CommandResult {
	return CommandResult{Status: StatusError, Action: action, Message: message}
}

// Messenger is the outbound transport handlers reply through.
type Messenger interface {
	messenger.Sender
	Broadcast(ctx context.Context, credential string, channelID int64, text, alertType string) messenger.Result
}

// EventSink receives structured events raised by handlers.
type EventSink interface {
	Forward(ctx context.Context, eventType string, data map[string]any) automation.Result
	Configured() bool
}

// IntegrationLogger records handler activity in external tools such as notion or trello.
type IntegrationLogger interface {
	Log(ctx context.Context, service string, data map[string]any) automation.Result
}

// Channels are the broadcast destinations. Zero means not configured.
type Channels struct {
	Security   int64
	RealEstate int64
	Client     int64
}

type Option func(*Router)

func WithEvents(sink EventSink) Option {
	return func(r *Router) { r.events = sink }
}

func WithIntegrations(l IntegrationLogger) Option {
	return func(r *Router) { r.integrations = l }
}

func WithChannels(c Channels) Option {
	return func(r *Router) { r.channels = c }
}

func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

type Router struct {
	personas []Persona
	tables   map[PersonaName]map[string]Command

	messenger    Messenger
	events       EventSink
	integrations IntegrationLogger
	store        *store.Store
	channels     Channels
	logger       *zap.Logger
	now          func() time.Time
}

func NewRouter(personas []Persona, m Messenger, st *store.Store, logger *zap.Logger, opts ...Option) *Router {
	r := &Router{
		personas:  personas,
		tables:    make(map[PersonaName]map[string]Command, len(personas)+1),
		messenger: m,
		store:     st,
		logger:    logger,
		now:       time.Now,
	}
	for _, p := range personas {
		r.tables[p.Name] = commandTable(p.Name)
	}
	r.tables[Fallback] = commandTable(Fallback)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Personas returns the configured persona catalogue.
func (r *Router) Personas() []Persona {
	return append([]Persona(nil), r.personas...)
}

// IdentifyPersona matches the credential exactly against the catalogue.
func (r *Router) IdentifyPersona(credential string) (PersonaName, bool) {
	if p, ok := r.persona(credential); ok {
		return p.Name, true
	}
	return Fallback, false
}

func (r *Router) persona(credential string) (Persona, bool) {
	if credential == "" {
		return Persona{}, false
	}
	for _, p := range r.personas {
		if p.Credential == credential {
			return p, true
		}
	}
	return Persona{}, false
}

// call carries one dispatch through a handler.
type call struct {
	persona Persona
	update  Update
	args    []string
}

func (c call) arg(i int) string {
	if i < len(c.args) {
		return c.args[i]
	}
	return ""
}

// Dispatch routes the update to the handler for its command key. Unknown keys and free
// text go to the persona default handler. Handler failures never escape as errors.
func (r *Router) Dispatch(ctx context.Context, update Update, credential string) CommandResult {
	p, ok := r.persona(credential)
	if !ok {
		p = Persona{Name: Fallback, Credential: credential}
	}

	key, args := splitCommand(update.Text)
	c := call{persona: p, update: update, args: args}

	var res CommandResult
	cmd, known := r.tables[p.Name][key]
	switch {
	case !known:
		res = r.handleDefault(ctx, c, key)
	case len(args) < commandInfos[cmd].arity:
		res = r.usagePrompt(ctx, c, cmd)
	default:
		res = handlers[cmd](ctx, r, c)
	}
	res.Persona = string(p.Name)

	r.logger.Info("bot update dispatched",
		zap.String("persona", string(p.Name)),
		zap.String("command", key),
		zap.Int64("chat_id", update.ChatID),
		zap.String("status", res.Status),
		zap.String("action", res.Action),
	)
	return res
}

// splitCommand returns the first whitespace token and the remaining tokens. A trailing
// "@botname" on the command key is dropped.
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil
	}
	key := fields[0]
	if strings.HasPrefix(key, "/") {
		if i := strings.IndexByte(key, '@'); i > 0 {
			key = key[:i]
		}
	}
	return key, fields[1:]
}

func (r *Router) usagePrompt(ctx context.Context, c call, cmd Command) CommandResult {
	info := commandInfos[cmd]
	r.reply(ctx, c, "❌ Please provide the required argument.\nUsage: "+info.usage)
	return failure(strings.TrimPrefix(info.key, "/"), "missing argument: "+info.usage)
}

func (r *Router) reply(ctx context.Context, c call, text string) messenger.Result {
	return r.messenger.Send(ctx, c.persona.Credential, c.update.ChatID, text, messenger.FormatHTML)
}

func (r *Router) emit(ctx context.Context, eventType string, data map[string]any) automation.Result {
	if r.events == nil {
		return automation.Result{Outcome: automation.NotConfigured, Reason: automation.ErrNotConfigured.Error()}
	}
	return r.events.Forward(ctx, eventType, data)
}

func (r *Router) logIntegration(ctx context.Context, service string, data map[string]any) {
	if r.integrations == nil {
		return
	}
	r.integrations.Log(ctx, service, data)
}

func (r *Router) broadcast(ctx context.Context, c call, channelID int64, text, alertType string) messenger.Result {
	return r.messenger.Broadcast(ctx, c.persona.Credential, channelID, text, alertType)
}
