package bots

// Command is the closed set of chat commands any persona understands.
type Command int

const (
	CmdStart Command = iota
	CmdHelp
	CmdContact
	CmdServices
	CmdToolkit
	CmdBook
	CmdSubmitCase
	CmdRefer
	CmdTerms
	CmdDashboard
	CmdKYC
	CmdStatus
	CmdTrackWallet
	CmdAnalyzeTx
	CmdRecoveryCase
	CmdDailyGem
	CmdNews
	CmdPrivacy
	CmdGDPR
	CmdMonitor
	CmdConsult
	CmdRiskCheck
	CmdAssist
	CmdTools
	CmdLibrary
	CmdTrain
	CmdAbout
	CmdScanNetwork
	CmdThreatReport
	CmdBlockIP
	CmdIncidentLog
	CmdUpdates
	CmdPropertyList
	CmdScheduleViewing
	CmdTenantStatus

	numCommands
)

type commandInfo struct {
	key   string
	desc  string
	arity int
	usage string
}

var commandInfos = [numCommands]commandInfo{
	CmdStart:           {key: "/start", desc: "Welcome message"},
	CmdHelp:            {key: "/help", desc: "Show this help"},
	CmdContact:         {key: "/contact", desc: "Contact information"},
	CmdServices:        {key: "/services", desc: "Our services"},
	CmdToolkit:         {key: "/toolkit", desc: "Client toolkit"},
	CmdBook:            {key: "/book", desc: "Book a consultation"},
	CmdSubmitCase:      {key: "/submitcase", desc: "Submit a case"},
	CmdRefer:           {key: "/refer", desc: "Get your referral code"},
	CmdTerms:           {key: "/terms", desc: "Terms of service"},
	CmdDashboard:       {key: "/dashboard", desc: "Client dashboard"},
	CmdKYC:             {key: "/kyc", desc: "Start KYC verification"},
	CmdStatus:          {key: "/status", desc: "System status"},
	CmdTrackWallet:     {key: "/track_wallet", desc: "Track a wallet", arity: 1, usage: "/track_wallet <address>"},
	CmdAnalyzeTx:       {key: "/analyze_tx", desc: "Analyze a transaction", arity: 1, usage: "/analyze_tx <hash>"},
	CmdRecoveryCase:    {key: "/recovery_case", desc: "Recovery case status", arity: 1, usage: "/recovery_case <case_id>"},
	CmdDailyGem:        {key: "/dailygem", desc: "Daily security tip"},
	CmdNews:            {key: "/news", desc: "Latest security news"},
	CmdPrivacy:         {key: "/privacy", desc: "Privacy guidance"},
	CmdGDPR:            {key: "/gdpr", desc: "GDPR compliance"},
	CmdMonitor:         {key: "/monitor", desc: "Security monitoring"},
	CmdConsult:         {key: "/consult", desc: "Security consultation"},
	CmdRiskCheck:       {key: "/riskcheck", desc: "Risk assessment"},
	CmdAssist:          {key: "/assist", desc: "Talk to an analyst"},
	CmdTools:           {key: "/tools", desc: "Security tools"},
	CmdLibrary:         {key: "/library", desc: "Resource library"},
	CmdTrain:           {key: "/train", desc: "Security training"},
	CmdAbout:           {key: "/about", desc: "About GEM Enterprise"},
	CmdScanNetwork:     {key: "/scan_network", desc: "Request a network scan"},
	CmdThreatReport:    {key: "/threat_report", desc: "Request a threat report"},
	CmdBlockIP:         {key: "/block_ip", desc: "Block an IP address", arity: 1, usage: "/block_ip <ip> [reason]"},
	CmdIncidentLog:     {key: "/incident_log", desc: "Recent security incidents"},
	CmdUpdates:         {key: "/updates", desc: "Market updates"},
	CmdPropertyList:    {key: "/property_list", desc: "Property listings", usage: "/property_list [filter]"},
	CmdScheduleViewing: {key: "/schedule_viewing", desc: "Schedule a viewing", arity: 1, usage: "/schedule_viewing <property_id>"},
	CmdTenantStatus:    {key: "/tenant_status", desc: "Tenant request status", arity: 1, usage: "/tenant_status <unit>"},
}

func (c Command) String() string {
	if c < 0 || c >= numCommands {
		return "unknown"
	}
	return commandInfos[c].key
}

var assistCommands = []Command{
	CmdStart, CmdHelp, CmdContact, CmdServices, CmdToolkit, CmdBook,
	CmdSubmitCase, CmdRefer, CmdTerms, CmdDashboard, CmdKYC, CmdStatus,
}

var personaCommands = map[PersonaName][]Command{
	GEMAssist:      assistCommands,
	GemCyberAssist: append(append([]Command(nil), assistCommands...), CmdTrackWallet, CmdAnalyzeTx, CmdRecoveryCase),
	CyberGEMSecure: {
		CmdStart, CmdHelp, CmdDailyGem, CmdNews, CmdPrivacy, CmdGDPR, CmdMonitor,
		CmdConsult, CmdRiskCheck, CmdAssist, CmdTools, CmdLibrary, CmdTrain, CmdAbout,
		CmdServices, CmdContact, CmdScanNetwork, CmdThreatReport, CmdBlockIP, CmdIncidentLog,
	},
	RealEstateChannel: {
		CmdStart, CmdHelp, CmdUpdates, CmdServices, CmdContact, CmdBook, CmdSubmitCase,
		CmdDashboard, CmdRefer, CmdTerms, CmdPropertyList, CmdScheduleViewing, CmdTenantStatus,
	},
}

// commandTable maps command keys to commands for one persona. Fallback gets an empty table.
func commandTable(p PersonaName) map[string]Command {
	table := make(map[string]Command, len(personaCommands[p]))
	for _, c := range personaCommands[p] {
		table[commandInfos[c].key] = c
	}
	return table
}
