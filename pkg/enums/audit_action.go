package enums

// AuditAction is the kind of mutation an audit log entry records.
type AuditAction string

const (
	AuditActionRead   AuditAction = "read"
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionRead, AuditActionCreate, AuditActionUpdate, AuditActionDelete:
		return true
	}
	return false
}
