package guard

import (
	"fmt"

	"github.com/tkingovr/apigate/api"
	"github.com/tkingovr/apigate/internal/policy"
)

// Blackhole blocks clients whose address falls in a blackholed range.
type Blackhole struct {
	list *policy.IPMatchList
}

// NewBlackhole builds the blackhole from CIDR ranges or single addresses.
func NewBlackhole(ranges []string) (*Blackhole, error) {
	list, err := policy.NewIPMatchList(ranges)
	if err != nil {
		return nil, err
	}
	return &Blackhole{list: list}, nil
}

func (b *Blackhole) Name() string { return api.CheckBotBlackhole }

func (b *Blackhole) Check(rc *policy.RequestContext) (bool, string) {
	if rc == nil || !b.list.Contains(rc.RemoteIP) {
		return false, ""
	}
	return true, fmt.Sprintf("client address %s is blackholed", rc.RemoteIP)
}

// Len returns the number of blackholed ranges.
func (b *Blackhole) Len() int { return b.list.Len() }
