package memory

import (
	"context"

	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
)

// Directory is a seeded approver directory for tests and local runs. Role
// lookups come from ByRole; department heads can additionally be scoped per
// department, falling back to the role-wide list when no scoped entry exists.
type Directory struct {
	ByRole          map[entities.ApproverRole][]entities.Approver
	DepartmentHeads map[string][]entities.Approver
}

func (d Directory) ResolveApprovers(_ context.Context, role entities.ApproverRole, req entities.Requisition) ([]entities.Approver, error) {
	if role == entities.RoleDepartmentHead && d.DepartmentHeads != nil {
		if approvers, ok := d.DepartmentHeads[req.DepartmentID]; ok {
			return approvers, nil
		}
	}
	return d.ByRole[role], nil
}
