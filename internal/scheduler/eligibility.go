package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/JAMAutoLtd/customer-portal-sub001/internal/models"
)

// InconsistencyError marks malformed input that must abort the whole run
// instead of being silently skipped: a skipped job would leave capacity
// calculations wrong for every other job.
type InconsistencyError struct {
	JobID  string
	Reason string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("inconsistent data for job %s: %s", e.JobID, e.Reason)
}

// Catalog resolves a job's required equipment model by explicit
// (service, vehicle year/make/model) requirement rows. Services without a
// requirement row need no special equipment.
type Catalog struct {
	requirements map[requirementKey]string
	hasService   map[string]bool
	orders       map[string]models.Order
}

type requirementKey struct {
	serviceID string
	year      int
	make      string
	model     string
}

// NewCatalog indexes requirement rows and orders for lookup.
func NewCatalog(requirements []models.EquipmentRequirement, orders map[string]models.Order) *Catalog {
	c := &Catalog{
		requirements: make(map[requirementKey]string, len(requirements)),
		hasService:   make(map[string]bool, len(requirements)),
		orders:       orders,
	}
	for _, req := range requirements {
		c.requirements[reqKey(req.ServiceID, req.VehicleYear, req.VehicleMake, req.VehicleModel)] = req.EquipmentModel
		c.hasService[req.ServiceID] = true
	}
	return c
}

func reqKey(serviceID string, year int, make, model string) requirementKey {
	return requirementKey{
		serviceID: serviceID,
		year:      year,
		make:      strings.ToLower(strings.TrimSpace(make)),
		model:     strings.ToLower(strings.TrimSpace(model)),
	}
}

// RequiredEquipment returns the equipment model the job needs, or ok=false
// when the job has no equipment constraint. A job whose order or vehicle
// record cannot be resolved while its service carries requirement rows is
// an InconsistencyError.
func (c *Catalog) RequiredEquipment(job models.Job) (string, bool, error) {
	order, found := c.orders[job.OrderID]
	if !found {
		return "", false, &InconsistencyError{JobID: job.ID, Reason: fmt.Sprintf("order %s not found", job.OrderID)}
	}
	if !c.hasService[job.ServiceID] {
		return "", false, nil
	}
	if order.VehicleID == nil {
		// Requirement rows exist for the service but the order carries no
		// vehicle to key the lookup.
		return "", false, nil
	}
	if order.Vehicle == nil {
		return "", false, &InconsistencyError{JobID: job.ID, Reason: fmt.Sprintf("vehicle %s not loaded for order %s", *order.VehicleID, order.ID)}
	}
	model, found := c.requirements[reqKey(job.ServiceID, order.Vehicle.Year, order.Vehicle.Make, order.Vehicle.Model)]
	if !found {
		return "", false, nil
	}
	return model, true, nil
}

// Order returns the indexed order for a job.
func (c *Catalog) Order(job models.Job) (models.Order, bool) {
	order, ok := c.orders[job.OrderID]
	return order, ok
}

// EligibleTechnicians returns, in stable ID order, the technicians allowed
// to perform the job on a day: their free time on that day must hold at
// least one window as long as the job's duration, and their van equipment
// must cover the job's required model.
func EligibleTechnicians(job models.Job, required string, hasRequirement bool, techs []models.Technician, free map[string][]TimeWindow) []string {
	var eligible []string
	for _, tech := range techs {
		if hasRequirement && !tech.HasEquipmentModel(required) {
			continue
		}
		if !hasCapacity(free[tech.ID], job.Duration()) {
			continue
		}
		eligible = append(eligible, tech.ID)
	}
	sort.Strings(eligible)
	return eligible
}

func hasCapacity(windows []TimeWindow, need time.Duration) bool {
	for _, w := range windows {
		if w.Duration() >= need {
			return true
		}
	}
	return false
}

// intersectIDs returns the ordered intersection of two sorted ID sets.
func intersectIDs(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, id := range a {
		seen[id] = true
	}
	var out []string
	for _, id := range b {
		if seen[id] {
			out = append(out, id)
		}
	}
	return out
}
