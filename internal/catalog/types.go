package catalog

// DetectionMode selects which detector strategy applies to a contract.
type DetectionMode string

const (
	ModeEventTopic         DetectionMode = "event_topic"
	ModeTransferToContract DetectionMode = "transfer_to_contract"
	ModeTxToContract       DetectionMode = "tx_to_contract"
	ModeProgramIDMatch     DetectionMode = "program_id_match"
	ModeHybrid             DetectionMode = "hybrid"
)

// Categories is the fixed category enumeration, in coverage-report order.
var Categories = []string{
	"dex", "lending", "bridge", "nft", "social",
	"governance", "yield", "perps", "liquid_staking", "oracle",
}

// EventSignatureConfig describes one indexed event to match, with the topic
// slot the user address occupies.
type EventSignatureConfig struct {
	Topic0              string `json:"topic0"`
	UserAddressPosition string `json:"user_address_position"` // "topic1".."topic3"
	InteractionType     string `json:"interaction_type"`
}

// DetectionConfig carries the mode-specific knobs; only the fields relevant
// to the contract's detection mode are meaningful.
type DetectionConfig struct {
	// event_topic
	EventSignatures []EventSignatureConfig `json:"event_signatures,omitempty"`
	// transfer_to_contract
	TokenContracts  []string `json:"token_contracts,omitempty"`
	InteractionType string   `json:"interaction_type,omitempty"`
	// program_id_match
	InstructionDiscriminators []string `json:"instruction_discriminators,omitempty"`
	// hybrid: ordered sub-detector specs, each at least {"mode": ...}
	SubDetectors []SubDetectorSpec `json:"sub_detectors,omitempty"`
}

// SubDetectorSpec names one sub-detector of a hybrid contract.
type SubDetectorSpec struct {
	Mode string `json:"mode"`
}

// ContractEntry is one address owned by a protocol, with its detection strategy.
type ContractEntry struct {
	Address         string          `json:"address"`
	Label           string          `json:"label"`
	Type            string          `json:"type"` // "core", "vault", "router", "factory"
	DetectionMode   DetectionMode   `json:"detection_mode"`
	DetectionConfig DetectionConfig `json:"detection_config"`
}

// AirdropIntel records community knowledge about a protocol's airdrop posture.
type AirdropIntel struct {
	ConfirmedCriteria    []string `json:"confirmed_criteria,omitempty"`
	CommunitySpeculation []string `json:"community_speculation,omitempty"`
	NotableEvents        []string `json:"notable_events,omitempty"`
	LastReviewed         string   `json:"last_reviewed,omitempty"`
}

// Metadata holds protocol links.
type Metadata struct {
	Website string `json:"website,omitempty"`
	Docs    string `json:"docs,omitempty"`
	Twitter string `json:"twitter,omitempty"`
}

// Protocol is one catalog entry. Immutable for the lifetime of a load;
// reloaded wholesale on demand.
type Protocol struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Chain          string          `json:"chain"`
	Category       string          `json:"category"`
	Subcategory    string          `json:"subcategory,omitempty"`
	HasToken       bool            `json:"has_token"`
	TokenSymbol    string          `json:"token_symbol,omitempty"`
	Status         string          `json:"status,omitempty"`
	ProtocolWeight float64         `json:"protocol_weight"`
	Contracts      []ContractEntry `json:"contracts"`
	AirdropIntel   AirdropIntel    `json:"airdrop_intel,omitempty"`
	Metadata       Metadata        `json:"metadata,omitempty"`
	LastVerified   string          `json:"last_verified,omitempty"`
}

// PrimaryMode is the detection mode of the first contract, used for display.
func (p Protocol) PrimaryMode() string {
	if len(p.Contracts) == 0 {
		return "unknown"
	}
	return string(p.Contracts[0].DetectionMode)
}
