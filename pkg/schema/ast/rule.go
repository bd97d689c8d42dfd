package ast

// Operator is a trigger comparison operator.
type Operator string

const (
	OperatorEqual        Operator = "=="
	OperatorNotEqual     Operator = "!="
	OperatorLessThan     Operator = "<"
	OperatorGreaterThan  Operator = ">"
	OperatorLessEqual    Operator = "<="
	OperatorGreaterEqual Operator = ">="
	OperatorIn           Operator = "in"
	OperatorNotIn        Operator = "not_in"
	OperatorPresent      Operator = "present" // Trigger fires whenever the field is present
)

// Operators lists every operator accepted in a rule trigger.
var Operators = []Operator{
	OperatorEqual,
	OperatorNotEqual,
	OperatorLessThan,
	OperatorGreaterThan,
	OperatorLessEqual,
	OperatorGreaterEqual,
	OperatorIn,
	OperatorNotIn,
	OperatorPresent,
}

// Requirement is the consequence a fired rule imposes on its owning field.
type Requirement string

const (
	RequirementRequired  Requirement = "required"
	RequirementForbidden Requirement = "forbidden"
	RequirementEquals    Requirement = "equals"
)

// RuleSpec is a conditional rule attached to a field: when the trigger
// matches, the owning field is subject to the requirement.
type RuleSpec struct {
	Name        string
	When        *TriggerSpec
	Requirement Requirement
	Value       *ValueNode // Expected value for RequirementEquals
	Location    Location
}

// TriggerSpec is the "when" half of a rule.
type TriggerSpec struct {
	Field    string
	Operator Operator
	Value    *ValueNode
	Location Location
}
