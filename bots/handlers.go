package bots

import (
	"context"
	"fmt"
	"html"
	"net"
	"strconv"
	"strings"

	"github.com/gem-enterprise/gemhub/models"
)

type handlerFunc func(ctx context.Context, r *Router, c call) CommandResult

// handlers is indexed by Command; every entry must be set.
var handlers = [numCommands]handlerFunc{
	CmdStart:           handleStart,
	CmdHelp:            handleHelp,
	CmdContact:         static("contact", contactText),
	CmdServices:        handleServices,
	CmdToolkit:         static("toolkit", toolkitText),
	CmdBook:            handleBook,
	CmdSubmitCase:      handleSubmitCase,
	CmdRefer:           handleRefer,
	CmdTerms:           static("terms", termsText),
	CmdDashboard:       static("dashboard", dashboardText),
	CmdKYC:             handleKYC,
	CmdStatus:          handleStatus,
	CmdTrackWallet:     handleTrackWallet,
	CmdAnalyzeTx:       handleAnalyzeTx,
	CmdRecoveryCase:    handleRecoveryCase,
	CmdDailyGem:        static("dailygem", dailyGemText),
	CmdNews:            curated("news", models.CategoryCybersecurity, "🛡️ <b>Latest Security News</b>"),
	CmdPrivacy:         static("privacy", privacyText),
	CmdGDPR:            static("gdpr", gdprText),
	CmdMonitor:         eventReply("monitor", "monitoring_request", monitorText),
	CmdConsult:         eventReply("consult", "consultation_requested", consultText),
	CmdRiskCheck:       eventReply("riskcheck", "risk_assessment_requested", riskCheckText),
	CmdAssist:          static("assist", assistText),
	CmdTools:           static("tools", toolsText),
	CmdLibrary:         static("library", libraryText),
	CmdTrain:           static("train", trainText),
	CmdAbout:           static("about", aboutText),
	CmdScanNetwork:     handleScanNetwork,
	CmdThreatReport:    handleThreatReport,
	CmdBlockIP:         handleBlockIP,
	CmdIncidentLog:     handleIncidentLog,
	CmdUpdates:         curated("updates", models.CategoryRealEstate, "🏠 <b>Real Estate Market Updates</b>"),
	CmdPropertyList:    handlePropertyList,
	CmdScheduleViewing: handleScheduleViewing,
	CmdTenantStatus:    handleTenantStatus,
}

func static(action, text string) handlerFunc {
	return func(ctx context.Context, r *Router, c call) CommandResult {
		r.reply(ctx, c, text)
		return success(action)
	}
}

func eventReply(action, eventType, text string) handlerFunc {
	return func(ctx context.Context, r *Router, c call) CommandResult {
		r.emit(ctx, eventType, userData(c, nil))
		r.reply(ctx, c, text)
		return success(action)
	}
}

// curated lists approved feed content of one category.
func curated(action string, category models.Category, header string) handlerFunc {
	return func(ctx context.Context, r *Router, c call) CommandResult {
		var items []models.ContentItem
		for _, it := range r.store.Approved(0) {
			if it.Category == category {
				items = append(items, it)
			}
			if len(items) == curatedLimit {
				break
			}
		}
		if len(items) == 0 {
			r.reply(ctx, c, header+"\n\nNo curated stories yet. Check back soon.")
			return success(action)
		}
		var b strings.Builder
		b.WriteString(header)
		b.WriteString("\n")
		for i, it := range items {
			fmt.Fprintf(&b, "\n%d. <b>%s</b>\n%s\n", i+1, html.EscapeString(it.Title), it.URL)
		}
		r.reply(ctx, c, b.String())
		return success(action)
	}
}

const curatedLimit = 5

func userData(c call, extra map[string]any) map[string]any {
	data := map[string]any{
		"user_id":  c.update.From.ID,
		"username": c.update.From.Username,
		"chat_id":  c.update.ChatID,
		"bot":      string(c.persona.Name),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func (r *Router) submit(c call, kind models.SubmissionKind, status, detail, code string) {
	r.store.AppendSubmission(models.Submission{
		Kind:    kind,
		Persona: string(c.persona.Name),
		User:    c.update.From.DisplayName(),
		ChatID:  c.update.ChatID,
		Status:  status,
		Detail:  detail,
		Code:    code,
	})
}

func handleStart(ctx context.Context, r *Router, c call) CommandResult {
	name := html.EscapeString(c.update.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Welcome %s!\n\n<b>%s</b>\n%s\n\nUse /help to see what I can do.",
		name, c.persona.Name, c.persona.Purpose)
	r.reply(ctx, c, text)
	r.emit(ctx, "user_onboarding", userData(c, map[string]any{"first_name": c.update.From.FirstName}))
	if c.persona.Name == GEMAssist {
		r.logIntegration(ctx, "notion", userData(c, map[string]any{"action": "user_start"}))
	}
	return success("start")
}

func handleHelp(ctx context.Context, r *Router, c call) CommandResult {
	r.reply(ctx, c, helpText(c.persona.Name))
	return success("help")
}

// helpText is generated from the persona command table.
func helpText(p PersonaName) string {
	var b strings.Builder
	b.WriteString("🤖 <b>Available commands</b>\n\n")
	for _, cmd := range personaCommands[p] {
		info := commandInfos[cmd]
		usage := info.usage
		if usage == "" {
			usage = info.key
		}
		fmt.Fprintf(&b, "%s - %s\n", html.EscapeString(usage), info.desc)
	}
	return b.String()
}

func handleServices(ctx context.Context, r *Router, c call) CommandResult {
	text, ok := servicesText[c.persona.Name]
	if !ok {
		text = servicesText[GEMAssist]
	}
	r.reply(ctx, c, text)
	return success("services")
}

func handleBook(ctx context.Context, r *Router, c call) CommandResult {
	r.submit(c, models.SubmissionConsultation, "requested", "", "")
	r.emit(ctx, "consultation_requested", userData(c, nil))
	r.reply(ctx, c, bookText)
	return success("book")
}

func handleSubmitCase(ctx context.Context, r *Router, c call) CommandResult {
	r.submit(c, models.SubmissionCase, "initiated", strings.Join(c.args, " "), "")
	r.logIntegration(ctx, "trello", userData(c, map[string]any{"action": "case_submission_initiated"}))
	r.reply(ctx, c, submitCaseText)
	return success("submitcase")
}

// ReferralCode is "GEM" plus the first four digits of the user id. Codes may collide.
func ReferralCode(userID int64) string {
	id := strconv.FormatInt(userID, 10)
	if userID == 0 {
		id = "0000"
	}
	if len(id) > 4 {
		id = id[:4]
	}
	return "GEM" + id
}

func handleRefer(ctx context.Context, r *Router, c call) CommandResult {
	code := ReferralCode(c.update.From.ID)
	r.submit(c, models.SubmissionReferral, "issued", "", code)
	r.reply(ctx, c, fmt.Sprintf("🎁 <b>Referral Program</b>\n\nYour referral code: <code>%s</code>\n\nShare it with friends and earn rewards when they join GEM Enterprise.", code))
	return success("refer")
}

func handleKYC(ctx context.Context, r *Router, c call) CommandResult {
	r.submit(c, models.SubmissionKYC, "initiated", "", "")
	r.logIntegration(ctx, "typeform", userData(c, map[string]any{"action": "kyc_initiated"}))
	r.reply(ctx, c, kycText)
	return success("kyc")
}

func handleStatus(ctx context.Context, r *Router, c call) CommandResult {
	automationState := "❌ Not configured"
	if r.events != nil && r.events.Configured() {
		automationState = "✅ Connected"
	}
	text := fmt.Sprintf("📊 <b>System Status</b>\n\n🤖 Bot: ✅ Online\n⚙️ Automation: %s\n📁 Cases: %d\n💰 Tracked wallets: %d\n🛡️ Security alerts: %d",
		automationState,
		len(r.store.Submissions(models.SubmissionCase)),
		len(r.store.Submissions(models.SubmissionWallet)),
		len(r.store.Submissions(models.SubmissionSecurityAlert)),
	)
	r.reply(ctx, c, text)
	return success("status")
}

// TruncateMiddle keeps head leading and tail trailing runes of s joined by "...".
// Short values are returned whole.
func TruncateMiddle(s string, head, tail int) string {
	r := []rune(s)
	if len(r) <= head+tail {
		return s
	}
	return string(r[:head]) + "..." + string(r[len(r)-tail:])
}

func handleTrackWallet(ctx context.Context, r *Router, c call) CommandResult {
	address := c.arg(0)
	r.emit(ctx, "wallet_tracking", userData(c, map[string]any{
		"wallet_address": address,
		"chains":         []string{"ethereum", "bitcoin", "polygon"},
	}))
	r.submit(c, models.SubmissionWallet, "tracking", address, "")
	r.reply(ctx, c, fmt.Sprintf("✅ <b>Wallet Tracking Activated</b>\n\n📍 Address: <code>%s</code>\n🔍 Monitoring: ethereum, bitcoin, polygon\n\nYou will be alerted about suspicious activity.",
		html.EscapeString(TruncateMiddle(address, 8, 6))))
	return success("wallet_tracking_started")
}

func handleAnalyzeTx(ctx context.Context, r *Router, c call) CommandResult {
	hash := c.arg(0)
	r.emit(ctx, "analyze_transaction", userData(c, map[string]any{"tx_hash": hash}))
	r.reply(ctx, c, fmt.Sprintf("🔍 <b>Transaction Analysis Requested</b>\n\n🧾 Hash: <code>%s</code>\n\nOur analysts will send the trace results here.",
		html.EscapeString(TruncateMiddle(hash, 10, 8))))
	return success("transaction_analysis")
}

func handleRecoveryCase(ctx context.Context, r *Router, c call) CommandResult {
	caseID := c.arg(0)
	r.emit(ctx, "recovery_case_status", userData(c, map[string]any{"case_id": caseID}))
	r.reply(ctx, c, fmt.Sprintf("📋 <b>Recovery Case %s</b>\n\nYour case manager has been notified and will update you shortly.",
		html.EscapeString(caseID)))
	return success("recovery_case_status")
}

func handleScanNetwork(ctx context.Context, r *Router, c call) CommandResult {
	res := r.emit(ctx, "security_scan", userData(c, map[string]any{"scan_type": "network"}))
	if !res.OK() {
		r.reply(ctx, c, "❌ Unable to start the network scan right now. Please try again later.")
		return failure("scan_failed", res.Reason)
	}
	r.submit(c, models.SubmissionSecurityAlert, "scan_requested", "network scan", "")
	r.reply(ctx, c, "🔍 <b>Network Scan Started</b>\n\nThe report will be sent to you when the scan completes.")
	return success("scan_requested")
}

func handleThreatReport(ctx context.Context, r *Router, c call) CommandResult {
	r.emit(ctx, "threat_analysis", userData(c, nil))
	r.reply(ctx, c, "🛡️ <b>Threat Report Requested</b>\n\nOur analysts are preparing your threat assessment.")
	r.broadcast(ctx, c, r.channels.Security,
		fmt.Sprintf("Threat report requested by %s", html.EscapeString(c.update.From.DisplayName())), "warning")
	return success("threat_report")
}

func handleBlockIP(ctx context.Context, r *Router, c call) CommandResult {
	ip := c.arg(0)
	if net.ParseIP(ip) == nil {
		r.reply(ctx, c, "❌ Invalid IP address.\nUsage: "+commandInfos[CmdBlockIP].usage)
		return failure("block_ip", "invalid ip address")
	}
	reason := strings.Join(c.args[1:], " ")
	if reason == "" {
		reason = "manual block"
	}
	r.emit(ctx, "block_ip", userData(c, map[string]any{"ip": ip, "reason": reason}))
	r.submit(c, models.SubmissionSecurityAlert, "block_requested", ip+": "+reason, "")
	r.broadcast(ctx, c, r.channels.Security, fmt.Sprintf("IP block requested: <code>%s</code>\nReason: %s", ip, html.EscapeString(reason)), "danger")
	r.reply(ctx, c, fmt.Sprintf("🚫 <b>Block Request Submitted</b>\n\nIP: <code>%s</code>\nReason: %s", ip, html.EscapeString(reason)))
	return success("block_ip")
}

const incidentLimit = 5

func handleIncidentLog(ctx context.Context, r *Router, c call) CommandResult {
	alerts := r.store.Submissions(models.SubmissionSecurityAlert)
	if len(alerts) == 0 {
		r.reply(ctx, c, "📋 <b>Incident Log</b>\n\nNo incidents recorded.")
		return success("incident_log")
	}
	if len(alerts) > incidentLimit {
		alerts = alerts[len(alerts)-incidentLimit:]
	}
	var b strings.Builder
	b.WriteString("📋 <b>Incident Log</b>\n")
	for i := len(alerts) - 1; i >= 0; i-- {
		a := alerts[i]
		fmt.Fprintf(&b, "\n• %s %s (%s)", a.CreatedAt.Format("2006-01-02 15:04"), html.EscapeString(a.Detail), a.Status)
	}
	r.reply(ctx, c, b.String())
	return success("incident_log")
}

func handlePropertyList(ctx context.Context, r *Router, c call) CommandResult {
	filter := strings.Join(c.args, " ")
	r.emit(ctx, "property_request", userData(c, map[string]any{"filter": filter}))
	r.submit(c, models.SubmissionPropertyUpdate, "list_requested", filter, "")
	text := "🏠 <b>Property Listings</b>\n\nCurrent listings are being prepared and will be sent shortly."
	if filter != "" {
		text += "\nFilter: " + html.EscapeString(filter)
	}
	r.reply(ctx, c, text)
	return success("property_list")
}

func handleScheduleViewing(ctx context.Context, r *Router, c call) CommandResult {
	id := c.arg(0)
	r.emit(ctx, "schedule_viewing", userData(c, map[string]any{"property_id": id}))
	r.submit(c, models.SubmissionPropertyUpdate, "viewing_requested", id, "")
	r.reply(ctx, c, fmt.Sprintf("📅 <b>Viewing Requested</b>\n\nProperty: <code>%s</code>\nAn agent will contact you to confirm the time.", html.EscapeString(id)))
	return success("schedule_viewing")
}

func handleTenantStatus(ctx context.Context, r *Router, c call) CommandResult {
	unit := c.arg(0)
	r.emit(ctx, "tenant_status_request", userData(c, map[string]any{"unit": unit}))
	r.reply(ctx, c, fmt.Sprintf("🔑 <b>Tenant Status</b>\n\nUnit: <code>%s</code>\nYour property manager will reply with the latest status.", html.EscapeString(unit)))
	return success("tenant_status")
}

// handleDefault answers free text and unknown commands.
func (r *Router) handleDefault(ctx context.Context, c call, key string) CommandResult {
	if strings.HasPrefix(key, "/") {
		r.reply(ctx, c, fmt.Sprintf("❓ Unknown command %s\nUse /help to see available commands.", html.EscapeString(key)))
		return success("unknown_command")
	}
	switch c.persona.Name {
	case GEMAssist, GemCyberAssist:
		if c.update.Text != "" {
			data := userData(c, map[string]any{"message": c.update.Text})
			r.logIntegration(ctx, "notion", data)
			r.emit(ctx, "message_received", data)
		}
		r.reply(ctx, c, "Thanks for your message. I've forwarded it to our team.\nUse /help for available commands.")
	case CyberGEMSecure:
		r.reply(ctx, c, "🛡️ Thanks for your message. Use /help for available security commands.")
	case RealEstateChannel:
		r.reply(ctx, c, "🏠 Thank you for your interest. Use /help for available commands.")
	default:
		r.reply(ctx, c, "Welcome to GEM Enterprise. Please use /help for available commands.")
	}
	return success("message_processed")
}
