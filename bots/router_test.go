package bots

import (
	"context"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gem-enterprise/gemhub/automation"
	"github.com/gem-enterprise/gemhub/messenger"
	"github.com/gem-enterprise/gemhub/models"
	"github.com/gem-enterprise/gemhub/store"
)

type sent struct {
	credential string
	chatID     int64
	text       string
	alert      string
}

type fakeMessenger struct {
	mu         sync.Mutex
	messages   []sent
	broadcasts []sent
}

func (f *fakeMessenger) Send(ctx context.Context, credential string, chatID int64, text, format string) messenger.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, sent{credential: credential, chatID: chatID, text: text})
	return messenger.Result{Outcome: messenger.Delivered}
}

func (f *fakeMessenger) Broadcast(ctx context.Context, credential string, channelID int64, text, alertType string) messenger.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, sent{credential: credential, chatID: channelID, text: text, alert: alertType})
	return messenger.Result{Outcome: messenger.Delivered}
}

type event struct {
	eventType string
	data      map[string]any
}

type fakeSink struct {
	events  []event
	outcome automation.Outcome
}

func (f *fakeSink) Forward(ctx context.Context, eventType string, data map[string]any) automation.Result {
	f.events = append(f.events, event{eventType: eventType, data: data})
	if f.outcome == "" {
		return automation.Result{Outcome: automation.Delivered}
	}
	return automation.Result{Outcome: f.outcome, Reason: "down"}
}

func (f *fakeSink) Configured() bool { return true }

func newTestRouter(t *testing.T) (*Router, *fakeMessenger, *fakeSink, *store.Store) {
	t.Helper()
	m := &fakeMessenger{}
	sink := &fakeSink{}
	st := store.New()
	personas := Personas(Credentials{
		GEMAssist:         "assist-token",
		GemCyberAssist:    "recovery-token",
		CyberGEMSecure:    "secure-token",
		RealEstateChannel: "estate-token",
	})
	r := NewRouter(personas, m, st, zap.NewNop(),
		WithEvents(sink),
		WithChannels(Channels{Security: -1001, RealEstate: -1002, Client: -1003}),
	)
	return r, m, sink, st
}

func msg(text string) Update {
	return Update{ChatID: 77, Text: text, From: User{ID: 123456789, Username: "alice", FirstName: "Alice"}}
}

func TestHandlerTableIsComplete(t *testing.T) {
	for c := Command(0); c < numCommands; c++ {
		assert.NotNil(t, handlers[c], "handler for %s", c)
		assert.NotEmpty(t, commandInfos[c].key, "key for command %d", c)
		if commandInfos[c].arity > 0 {
			assert.NotEmpty(t, commandInfos[c].usage, "usage for %s", c)
		}
	}
}

func TestCommandTablesHaveUniqueKeys(t *testing.T) {
	for name, cmds := range personaCommands {
		assert.Len(t, commandTable(name), len(cmds), string(name))
	}
	assert.Empty(t, commandTable(Fallback))
}

func TestIdentifyPersona(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	name, ok := r.IdentifyPersona("secure-token")
	assert.True(t, ok)
	assert.Equal(t, CyberGEMSecure, name)

	name, ok = r.IdentifyPersona("nope")
	assert.False(t, ok)
	assert.Equal(t, Fallback, name)

	_, ok = r.IdentifyPersona("")
	assert.False(t, ok)
}

func TestPersonasFallBackToSharedCredential(t *testing.T) {
	ps := Personas(Credentials{Shared: "shared", CyberGEMSecure: "own"})
	require.Len(t, ps, 4)
	assert.Equal(t, "shared", ps[0].Credential)
	assert.Equal(t, "own", ps[2].Credential)
	assert.Equal(t, "shared", ps[3].Credential)
}

func TestDispatch_EmptyTextUsesDefaultHandler(t *testing.T) {
	r, m, _, _ := newTestRouter(t)

	res := r.Dispatch(context.Background(), msg(""), "assist-token")

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "message_processed", res.Action)
	assert.Equal(t, "GEMAssist", res.Persona)
	require.Len(t, m.messages, 1)
}

func TestDispatch_UnknownCommandIsNotFatal(t *testing.T) {
	r, m, _, _ := newTestRouter(t)

	res := r.Dispatch(context.Background(), msg("/doesnotexist now"), "secure-token")

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "unknown_command", res.Action)
	require.Len(t, m.messages, 1)
	assert.Contains(t, m.messages[0].text, "/help")
}

func TestDispatch_CommandKeyIsCaseSensitive(t *testing.T) {
	r, _, _, _ := newTestRouter(t)

	res := r.Dispatch(context.Background(), msg("/START"), "assist-token")
	assert.Equal(t, "unknown_command", res.Action)

	res = r.Dispatch(context.Background(), msg("/start@GEMAssist_bot"), "assist-token")
	assert.Equal(t, "start", res.Action)
}

func TestDispatch_CommandOutsidePersonaTable(t *testing.T) {
	r, _, sink, st := newTestRouter(t)

	res := r.Dispatch(context.Background(), msg("/track_wallet 0xabc"), "assist-token")

	assert.Equal(t, "unknown_command", res.Action)
	assert.Empty(t, st.Submissions(models.SubmissionWallet))
	assert.Empty(t, sink.events)
}

func TestDispatch_TrackWallet(t *testing.T) {
	r, m, sink, st := newTestRouter(t)
	address := "0x1234567890abcdef1234567890abcdef12345678"

	res := r.Dispatch(context.Background(), msg("/track_wallet "+address), "recovery-token")

	assert.Equal(t, StatusSuccess, res.Status)
	require.Len(t, m.messages, 1)
	assert.Contains(t, m.messages[0].text, "Wallet Tracking Activated")
	assert.Contains(t, m.messages[0].text, "0x123456...345678")
	assert.Equal(t, "recovery-token", m.messages[0].credential)
	assert.Equal(t, int64(77), m.messages[0].chatID)

	wallets := st.Submissions(models.SubmissionWallet)
	require.Len(t, wallets, 1)
	assert.Equal(t, "tracking", wallets[0].Status)
	assert.Equal(t, address, wallets[0].Detail)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "wallet_tracking", sink.events[0].eventType)
	assert.Equal(t, address, sink.events[0].data["wallet_address"])
}

func TestDispatch_TrackWalletWithoutAddress(t *testing.T) {
	r, m, sink, st := newTestRouter(t)

	res := r.Dispatch(context.Background(), msg("/track_wallet"), "recovery-token")

	assert.Equal(t, StatusError, res.Status)
	require.Len(t, m.messages, 1)
	assert.Contains(t, m.messages[0].text, "/track_wallet <address>")
	assert.Empty(t, st.Submissions(models.SubmissionWallet))
	assert.Empty(t, sink.events)
}

func TestTruncateMiddle(t *testing.T) {
	assert.Equal(t, "0xshort", TruncateMiddle("0xshort", 8, 6))
	assert.Equal(t, "12345678901234", TruncateMiddle("12345678901234", 8, 6))
	assert.Equal(t, "12345678...012345", TruncateMiddle("123456789012345", 8, 6))

	got := TruncateMiddle("ÄÖÜäöüßéèêëàáâ€", 8, 6)
	assert.Equal(t, "ÄÖÜäöüßé...êëàáâ€", got)
	assert.True(t, utf8.ValidString(got))
}

func TestReferralCode(t *testing.T) {
	assert.Equal(t, "GEM1234", ReferralCode(123456789))
	assert.Equal(t, "GEM0000", ReferralCode(0))
	assert.Equal(t, "GEM42", ReferralCode(42))
}

func TestDispatch_Refer(t *testing.T) {
	r, m, _, st := newTestRouter(t)

	res := r.Dispatch(context.Background(), msg("/refer"), "estate-token")

	assert.Equal(t, "refer", res.Action)
	require.Len(t, m.messages, 1)
	assert.Contains(t, m.messages[0].text, "GEM1234")
	refs := st.Submissions(models.SubmissionReferral)
	require.Len(t, refs, 1)
	assert.Equal(t, "GEM1234", refs[0].Code)
}

func TestDispatch_FallbackPersona(t *testing.T) {
	r, m, _, _ := newTestRouter(t)

	res := r.Dispatch(context.Background(), msg("/start"), "unknown-token")

	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "Default", res.Persona)
	assert.Equal(t, "unknown_command", res.Action)
	require.Len(t, m.messages, 1)
	assert.Equal(t, "unknown-token", m.messages[0].credential)
}

func TestDispatch_HelpListsPersonaCommands(t *testing.T) {
	r, m, _, _ := newTestRouter(t)

	r.Dispatch(context.Background(), msg("/help"), "secure-token")

	require.Len(t, m.messages, 1)
	assert.Contains(t, m.messages[0].text, "/scan_network")
	assert.Contains(t, m.messages[0].text, "/block_ip &lt;ip&gt; [reason]")
	assert.NotContains(t, m.messages[0].text, "/track_wallet")
}

func TestDispatch_BlockIP(t *testing.T) {
	r, m, sink, st := newTestRouter(t)

	res := r.Dispatch(context.Background(), msg("/block_ip not-an-ip"), "secure-token")
	assert.Equal(t, StatusError, res.Status)
	assert.Empty(t, sink.events)

	res = r.Dispatch(context.Background(), msg("/block_ip 10.0.0.9 brute force"), "secure-token")
	assert.Equal(t, StatusSuccess, res.Status)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "brute force", sink.events[0].data["reason"])
	require.Len(t, m.broadcasts, 1)
	assert.Equal(t, int64(-1001), m.broadcasts[0].chatID)
	assert.Equal(t, "danger", m.broadcasts[0].alert)
	assert.Len(t, st.Submissions(models.SubmissionSecurityAlert), 1)
}

func TestDispatch_ScanNetworkReportsAutomationFailure(t *testing.T) {
	r, _, sink, st := newTestRouter(t)
	sink.outcome = automation.Failed

	res := r.Dispatch(context.Background(), msg("/scan_network"), "secure-token")

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "scan_failed", res.Action)
	assert.Empty(t, st.Submissions(models.SubmissionSecurityAlert))
}

func TestDispatch_NewsReadsApprovedQueue(t *testing.T) {
	r, m, _, st := newTestRouter(t)
	st.ReplacePending([]*models.ContentItem{
		{ID: "a", Title: "Zero-Day <Patch>", URL: "https://x/a", Category: models.CategoryCybersecurity},
		{ID: "b", Title: "Rates", URL: "https://x/b", Category: models.CategoryFinancial},
	})
	st.Approve("a")
	st.Approve("b")

	r.Dispatch(context.Background(), msg("/news"), "secure-token")

	require.Len(t, m.messages, 1)
	assert.Contains(t, m.messages[0].text, "Zero-Day &lt;Patch&gt;")
	assert.NotContains(t, m.messages[0].text, "Rates")
}

func TestDecodeUpdate(t *testing.T) {
	u, err := DecodeUpdate([]byte(`{"update_id":1,"message":{"chat":{"id":-55},"from":{"id":9,"username":"bob"},"text":"/start"}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(-55), u.ChatID)
	assert.Equal(t, "/start", u.Text)
	assert.Equal(t, "bob", u.From.DisplayName())

	u, err = DecodeUpdate([]byte(`{"update_id":2}`))
	require.NoError(t, err)
	assert.Equal(t, Update{}, u)

	_, err = DecodeUpdate([]byte(`not json`))
	assert.Error(t, err)
}
