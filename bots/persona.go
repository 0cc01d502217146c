package bots

type PersonaName string

const (
	GEMAssist         PersonaName = "GEMAssist"
	GemCyberAssist    PersonaName = "GemCyberAssist"
	CyberGEMSecure    PersonaName = "CyberGEMSecure"
	RealEstateChannel PersonaName = "RealEstateChannel"
	// Fallback answers updates whose credential matches no configured persona.
	Fallback PersonaName = "Default"
)

// Persona is one external bot identity. Immutable once loaded.
type Persona struct {
	Name       PersonaName `json:"name"`
	Credential string      `json:"-"`
	Handle     string      `json:"handle"`
	Purpose    string      `json:"purpose"`
}

// Credentials holds the bot tokens from configuration. Shared is used for any persona
// without a dedicated token.
type Credentials struct {
	Shared            string
	GEMAssist         string
	GemCyberAssist    string
	CyberGEMSecure    string
	RealEstateChannel string
}

func orShared(token, shared string) string {
	if token != "" {
		return token
	}
	return shared
}

// Personas builds the persona catalogue in lookup order.
func Personas(c Credentials) []Persona {
	return []Persona{
		{
			Name:       GEMAssist,
			Credential: orShared(c.GEMAssist, c.Shared),
			Handle:     "@GEMAssist_bot",
			Purpose:    "Central operations bot",
		},
		{
			Name:       GemCyberAssist,
			Credential: orShared(c.GemCyberAssist, c.Shared),
			Handle:     "@GemCyberAssist_bot",
			Purpose:    "Client service and asset recovery assistant",
		},
		{
			Name:       CyberGEMSecure,
			Credential: orShared(c.CyberGEMSecure, c.Shared),
			Handle:     "@CyberGEMSecure_bot",
			Purpose:    "Cybersecurity education and compliance",
		},
		{
			Name:       RealEstateChannel,
			Credential: orShared(c.RealEstateChannel, c.Shared),
			Handle:     "@realestatechannel_bot",
			Purpose:    "Real estate content and services",
		},
	}
}
