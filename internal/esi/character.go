package esi

import (
	"context"
	"encoding/json"
	"fmt"
)

// CharacterOrder represents one of the character's own market orders.
type CharacterOrder struct {
	OrderID      int64   `json:"order_id"`
	TypeID       int32   `json:"type_id"`
	LocationID   int64   `json:"location_id"`
	RegionID     int32   `json:"region_id"`
	Price        float64 `json:"price"`
	VolumeRemain int32   `json:"volume_remain"`
	VolumeTotal  int32   `json:"volume_total"`
	IsBuyOrder   bool    `json:"is_buy_order"`
	Duration     int     `json:"duration"`
	Issued       string  `json:"issued"`
}

// WalletTransaction represents a wallet transaction.
type WalletTransaction struct {
	TransactionID int64   `json:"transaction_id"`
	Date          string  `json:"date"`
	TypeID        int32   `json:"type_id"`
	LocationID    int64   `json:"location_id"`
	UnitPrice     float64 `json:"unit_price"`
	Quantity      int32   `json:"quantity"`
	IsBuy         bool    `json:"is_buy"`
}

// CharacterAsset represents an asset row from character inventory.
type CharacterAsset struct {
	ItemID       int64  `json:"item_id"`
	TypeID       int32  `json:"type_id"`
	LocationID   int64  `json:"location_id"`
	LocationType string `json:"location_type"`
	LocationFlag string `json:"location_flag"`
	Quantity     int64  `json:"quantity"`
	IsSingleton  bool   `json:"is_singleton"`
}

// SkillEntry represents a single trained skill.
type SkillEntry struct {
	SkillID      int32 `json:"skill_id"`
	ActiveLevel  int   `json:"active_skill_level"`
	TrainedLevel int   `json:"trained_skill_level"`
}

// SkillSheet is the character's skill data.
type SkillSheet struct {
	Skills  []SkillEntry `json:"skills"`
	TotalSP int64        `json:"total_sp"`
}

// Trading skill type IDs.
const (
	SkillBrokerRelations int32 = 3446
	SkillAccounting      int32 = 16622
)

// GetWalletBalance fetches the character's ISK balance.
func (c *Client) GetWalletBalance(ctx context.Context) (float64, error) {
	url := fmt.Sprintf("%s/characters/%d/wallet/?datasource=tranquility", baseURL, c.creds.CharacterID)
	var balance float64
	if err := c.getJSON(ctx, url, true, &balance); err != nil {
		return 0, fmt.Errorf("wallet: %w", err)
	}
	return balance, nil
}

// GetCharacterOrders fetches the character's active market orders.
func (c *Client) GetCharacterOrders(ctx context.Context) ([]CharacterOrder, error) {
	url := fmt.Sprintf("%s/characters/%d/orders/?datasource=tranquility", baseURL, c.creds.CharacterID)
	var orders []CharacterOrder
	if err := c.getJSON(ctx, url, true, &orders); err != nil {
		return nil, fmt.Errorf("character orders: %w", err)
	}
	return orders, nil
}

// GetWalletTransactions fetches all pages of the character's wallet
// transactions.
func (c *Client) GetWalletTransactions(ctx context.Context) ([]WalletTransaction, error) {
	url := fmt.Sprintf("%s/characters/%d/wallet/transactions/?datasource=tranquility", baseURL, c.creds.CharacterID)
	var all []WalletTransaction
	err := c.getPaginated(ctx, url, true, func(page []byte) error {
		var txns []WalletTransaction
		if err := json.Unmarshal(page, &txns); err != nil {
			return err
		}
		all = append(all, txns...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("wallet transactions: %w", err)
	}
	return all, nil
}

// GetAssets fetches all pages of the character's assets.
func (c *Client) GetAssets(ctx context.Context) ([]CharacterAsset, error) {
	url := fmt.Sprintf("%s/characters/%d/assets/?datasource=tranquility", baseURL, c.creds.CharacterID)
	var all []CharacterAsset
	err := c.getPaginated(ctx, url, true, func(page []byte) error {
		var assets []CharacterAsset
		if err := json.Unmarshal(page, &assets); err != nil {
			return err
		}
		all = append(all, assets...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	return all, nil
}

// GetSkills fetches the character's trained skills.
func (c *Client) GetSkills(ctx context.Context) (*SkillSheet, error) {
	url := fmt.Sprintf("%s/characters/%d/skills/?datasource=tranquility", baseURL, c.creds.CharacterID)
	var sheet SkillSheet
	if err := c.getJSON(ctx, url, true, &sheet); err != nil {
		return nil, fmt.Errorf("skills: %w", err)
	}
	return &sheet, nil
}

// TradingSkills extracts the Broker Relations and Accounting levels
// from a skill sheet. Untrained skills report level 0.
func (s *SkillSheet) TradingSkills() (brokerRelations, accounting int) {
	for _, sk := range s.Skills {
		switch sk.SkillID {
		case SkillBrokerRelations:
			brokerRelations = sk.ActiveLevel
		case SkillAccounting:
			accounting = sk.ActiveLevel
		}
	}
	return brokerRelations, accounting
}
