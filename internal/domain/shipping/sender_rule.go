package shipping

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// RuleConditionType identifies what part of an order a sender rule matches
type RuleConditionType string

const (
	// ConditionCustomerNameEquals matches the customer name exactly
	// (case-insensitive)
	ConditionCustomerNameEquals RuleConditionType = "customer_name_equals"
	// ConditionCustomerNameContains matches a substring of the customer
	// name (case-insensitive)
	ConditionCustomerNameContains RuleConditionType = "customer_name_contains"
	// ConditionTagContains matches when the order's tag list contains the
	// condition value
	ConditionTagContains RuleConditionType = "tag_contains"
	// ConditionSubClientEquals matches the order's sub-client exactly
	ConditionSubClientEquals RuleConditionType = "subclient_equals"
)

// IsValid returns true if the condition type is valid
func (t RuleConditionType) IsValid() bool {
	switch t {
	case ConditionCustomerNameEquals, ConditionCustomerNameContains,
		ConditionTagContains, ConditionSubClientEquals:
		return true
	default:
		return false
	}
}

// RuleTarget carries the order fields a sender rule can match against
type RuleTarget struct {
	CustomerName string
	Tags         []string
	SubClient    string
}

// SenderRule is a tenant-scoped attribution rule. Rules are evaluated
// highest priority first; the first active rule whose condition is
// satisfied wins.
type SenderRule struct {
	shared.TenantAggregateRoot
	Name           string            `gorm:"type:varchar(100);not null"`
	ConditionType  RuleConditionType `gorm:"type:varchar(40);not null"`
	ConditionValue string            `gorm:"type:varchar(255);not null"`
	SenderConfigID uuid.UUID         `gorm:"type:uuid;not null"`
	Priority       int               `gorm:"not null;default:0;index"`
	IsActive       bool              `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SenderRule) TableName() string {
	return "sender_rules"
}

// NewSenderRule creates a new sender attribution rule
func NewSenderRule(tenantID uuid.UUID, name string, conditionType RuleConditionType, conditionValue string, senderConfigID uuid.UUID, priority int) (*SenderRule, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Rule name cannot be empty")
	}
	if !conditionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONDITION", "Unknown rule condition type")
	}
	if conditionValue == "" {
		return nil, shared.NewDomainError("INVALID_CONDITION", "Rule condition value cannot be empty")
	}
	if senderConfigID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SENDER_CONFIG", "Target sender configuration ID cannot be empty")
	}

	return &SenderRule{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		ConditionType:       conditionType,
		ConditionValue:      conditionValue,
		SenderConfigID:      senderConfigID,
		Priority:            priority,
		IsActive:            true,
	}, nil
}

// Matches evaluates the rule's condition against an order
func (r *SenderRule) Matches(target RuleTarget) bool {
	if !r.IsActive {
		return false
	}

	value := strings.ToLower(strings.TrimSpace(r.ConditionValue))

	switch r.ConditionType {
	case ConditionCustomerNameEquals:
		return strings.ToLower(strings.TrimSpace(target.CustomerName)) == value
	case ConditionCustomerNameContains:
		return strings.Contains(strings.ToLower(target.CustomerName), value)
	case ConditionTagContains:
		for _, tag := range target.Tags {
			if strings.ToLower(strings.TrimSpace(tag)) == value {
				return true
			}
		}
		return false
	case ConditionSubClientEquals:
		return strings.ToLower(strings.TrimSpace(target.SubClient)) == value
	default:
		return false
	}
}

// Deactivate removes the rule from evaluation
func (r *SenderRule) Deactivate() {
	r.IsActive = false
	r.Touch()
	r.IncrementVersion()
}

// SortRulesForEvaluation orders rules for deterministic first-match-wins
// evaluation: priority descending, then creation time and id ascending so
// equal priorities always evaluate in the same order.
func SortRulesForEvaluation(rules []SenderRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.Before(rules[j].CreatedAt)
		}
		return rules[i].ID.String() < rules[j].ID.String()
	})
}

// FirstMatch returns the first rule in evaluation order that matches the
// target, or nil when none do. The input is sorted in place.
func FirstMatch(rules []SenderRule, target RuleTarget) *SenderRule {
	SortRulesForEvaluation(rules)
	for i := range rules {
		if rules[i].Matches(target) {
			return &rules[i]
		}
	}
	return nil
}
