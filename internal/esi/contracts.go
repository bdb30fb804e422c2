package esi

import (
	"context"
	"encoding/json"
	"fmt"
)

// Contract represents a character contract from ESI.
type Contract struct {
	ContractID   int64   `json:"contract_id"`
	Type         string  `json:"type"`   // item_exchange, courier, auction...
	Status       string  `json:"status"` // outstanding, in_progress, finished...
	Price        float64 `json:"price"`
	Reward       float64 `json:"reward"`
	Collateral   float64 `json:"collateral"`
	DateIssued   string  `json:"date_issued"`
	DateExpired  string  `json:"date_expired"`
	IssuerID     int32   `json:"issuer_id"`
	AssigneeID   int32   `json:"assignee_id"`
	ForCorp      bool    `json:"for_corporation"`
	Availability string  `json:"availability"`
}

// Active reports whether the contract still binds ISK or items.
func (ct Contract) Active() bool {
	return ct.Status == "outstanding" || ct.Status == "in_progress"
}

// GetContracts fetches all pages of the character's contracts.
func (c *Client) GetContracts(ctx context.Context) ([]Contract, error) {
	url := fmt.Sprintf("%s/characters/%d/contracts/?datasource=tranquility", baseURL, c.creds.CharacterID)
	var all []Contract
	err := c.getPaginated(ctx, url, true, func(page []byte) error {
		var contracts []Contract
		if err := json.Unmarshal(page, &contracts); err != nil {
			return err
		}
		all = append(all, contracts...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("contracts: %w", err)
	}
	return all, nil
}
