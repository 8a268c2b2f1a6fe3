package tradecache

// DEFAULT_KEY is the namespaced key the app state is persisted under
const DEFAULT_KEY = "app-state"

// AppState is the locally persisted trade state
type AppState struct {
	TermsAccepted bool               `json:"termsAccepted"`
	WeiIn         map[string]string  `json:"weiIn"`    // coin id -> wei paid in before graduation
	Balances      map[string]Balance `json:"balances"` // coin id -> token balance after graduation
}

// Balance is a cached token balance
type Balance struct {
	BalanceUnits string `json:"balanceUnits"`
	LastUpdated  int64  `json:"lastUpdated"` // unix seconds
}

// Event is published to subscribers after every state change
type Event struct {
	NewState AppState `json:"newState"`
}

// envelope is the cross-instance broadcast payload
type envelope struct {
	InstanceID string   `json:"instanceId"`
	NewState   AppState `json:"newState"`
}

func emptyState() AppState {
	return AppState{
		WeiIn:    make(map[string]string),
		Balances: make(map[string]Balance),
	}
}

// clone returns a deep copy with non-nil maps
func (s AppState) clone() AppState {
	out := emptyState()
	out.TermsAccepted = s.TermsAccepted
	for k, v := range s.WeiIn {
		out.WeiIn[k] = v
	}
	for k, v := range s.Balances {
		out.Balances[k] = v
	}
	return out
}
