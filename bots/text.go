package bots

const (
	contactText = "📞 <b>Contact GEM Enterprise</b>\n\n📧 Email: support@gementerprise.io\n🌐 Web: https://gementerprise.io\n💬 Telegram: @GEMAssist_bot"

	toolkitText = "🧰 <b>Client Toolkit</b>\n\n• Case submission: /submitcase\n• KYC verification: /kyc\n• Dashboard: /dashboard\n• Consultation: /book"

	termsText = "📄 <b>Terms of Service</b>\n\nThe full terms are available at https://gementerprise.io/terms"

	dashboardText = "📊 <b>Client Dashboard</b>\n\nAccess your cases and reports at https://gementerprise.io/dashboard"

	bookText = "📅 <b>Book a Consultation</b>\n\nYour request has been received. A specialist will contact you to arrange a time."

	submitCaseText = "📁 <b>Case Submission</b>\n\nPlease describe your case in your next message: what happened, when, and any reference numbers. A case manager will follow up."

	kycText = "🪪 <b>KYC Verification</b>\n\nVerification has started. You will receive a secure link to upload your documents."

	dailyGemText = "💎 <b>Daily Security Gem</b>\n\nEnable hardware-key two-factor authentication on every account that supports it."

	privacyText = "🔒 <b>Privacy Guidance</b>\n\nReview app permissions monthly, use a password manager and never reuse passwords."

	gdprText = "🇪🇺 <b>GDPR Compliance</b>\n\nWe help you map personal data flows, document lawful bases and prepare for audits."

	monitorText = "📡 <b>Security Monitoring</b>\n\nYour monitoring request has been logged. An analyst will confirm coverage."

	consultText = "🤝 <b>Security Consultation</b>\n\nYour request has been received. A security consultant will reach out."

	riskCheckText = "⚠️ <b>Risk Assessment</b>\n\nYour risk assessment request is queued. Results will be delivered here."

	assistText = "🧑‍💻 <b>Analyst Assistance</b>\n\nDescribe your issue in your next message and an analyst will respond."

	toolsText = "🛠️ <b>Security Tools</b>\n\n/scan_network - Network scan\n/threat_report - Threat report\n/block_ip - Block an address\n/incident_log - Incident history"

	libraryText = "📚 <b>Resource Library</b>\n\nGuides and checklists: https://gementerprise.io/library"

	trainText = "🎓 <b>Security Training</b>\n\nPhishing awareness and incident response courses: https://gementerprise.io/training"

	aboutText = "ℹ️ <b>About GEM Enterprise</b>\n\nCybersecurity, financial services and real estate under one roof."
)

var servicesText = map[PersonaName]string{
	GEMAssist:         "💼 <b>Our Services</b>\n\n• Asset recovery\n• Compliance and KYC\n• Cybersecurity consulting\n• Real estate advisory",
	GemCyberAssist:    "💼 <b>Recovery Services</b>\n\n• Wallet tracking\n• Transaction tracing\n• Recovery case management",
	CyberGEMSecure:    "🛡️ <b>Security Services</b>\n\n• Network monitoring\n• Threat intelligence\n• GDPR compliance\n• Staff training",
	RealEstateChannel: "🏠 <b>Real Estate Services</b>\n\n• Property listings\n• Viewings\n• Tenant management",
}
