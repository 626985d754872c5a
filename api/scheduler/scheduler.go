// Package scheduler runs the periodic consistency scan over the three
// collections a sale touches. A crash between the sale's writes can leave a
// vehicle referenced by a user but unknown to the dealership (or vice versa);
// the scan surfaces those orphans so an operator can repair them.
package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openauto/car-market-api/databases"
	"github.com/openauto/car-market-api/models"
)

const scanTimeout = 5 * time.Minute

// Report describes every dangling cross-collection reference found by a scan
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	// sold_vehicles documents nothing points at
	VehiclesWithoutOwner      []string `json:"vehicles_without_owner"`
	VehiclesWithoutDealership []string `json:"vehicles_without_dealership"`

	// references to sold_vehicles documents that do not exist
	DanglingUserRefs       []string `json:"dangling_user_refs"`
	DanglingDealershipRefs []string `json:"dangling_dealership_refs"`
}

// Clean reports whether the scan found nothing to repair
func (r *Report) Clean() bool {
	return len(r.VehiclesWithoutOwner) == 0 &&
		len(r.VehiclesWithoutDealership) == 0 &&
		len(r.DanglingUserRefs) == 0 &&
		len(r.DanglingDealershipRefs) == 0
}

// Reconciler owns the cron schedule and the scan itself
type Reconciler struct {
	cron *cron.Cron
	UDB  databases.UserDatabase
	DDB  databases.DealershipDatabase
	SVDB databases.SoldVehicleDatabase
}

// NewReconciler returns a reconciler that is not yet scheduled; call Start to
// begin periodic scans
func NewReconciler(udb databases.UserDatabase, ddb databases.DealershipDatabase, svdb databases.SoldVehicleDatabase) *Reconciler {
	return &Reconciler{
		cron: cron.New(cron.WithLocation(time.UTC)),
		UDB:  udb,
		DDB:  ddb,
		SVDB: svdb,
	}
}

// Start schedules the scan every 30 minutes
func (rc *Reconciler) Start() error {
	if _, err := rc.cron.AddFunc("*/30 * * * *", rc.runScan); err != nil {
		return err
	}
	rc.cron.Start()
	return nil
}

// Stop halts the schedule; a scan already in flight finishes
func (rc *Reconciler) Stop() {
	rc.cron.Stop()
}

func (rc *Reconciler) runScan() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	report, err := rc.Scan(ctx)
	if err != nil {
		zap.S().Errorw("consistency scan failed", "error", err)
		return
	}
	if report.Clean() {
		zap.S().Info("consistency scan clean")
		return
	}
	zap.S().Warnw("consistency scan found orphaned references",
		"vehicles_without_owner", report.VehiclesWithoutOwner,
		"vehicles_without_dealership", report.VehiclesWithoutDealership,
		"dangling_user_refs", report.DanglingUserRefs,
		"dangling_dealership_refs", report.DanglingDealershipRefs,
	)
}

// Scan loads the three collections concurrently and cross-checks every
// vehicle reference in both directions
func (rc *Reconciler) Scan(ctx context.Context) (*Report, error) {
	var (
		vehicles    []models.SoldVehicle
		users       []models.User
		dealerships []models.Dealership
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vehicles, err = rc.SVDB.Find(gctx, bson.M{})
		return err
	})
	g.Go(func() error {
		var err error
		users, err = rc.UDB.Find(gctx, bson.M{})
		return err
	})
	g.Go(func() error {
		var err error
		dealerships, err = rc.DDB.Find(gctx, bson.M{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(vehicles))
	for _, v := range vehicles {
		known[v.VehicleID] = struct{}{}
	}

	ownedByUser := make(map[string]struct{})
	ownedByDealership := make(map[string]struct{})
	report := &Report{
		GeneratedAt:               time.Now().UTC(),
		VehiclesWithoutOwner:      []string{},
		VehiclesWithoutDealership: []string{},
		DanglingUserRefs:          []string{},
		DanglingDealershipRefs:    []string{},
	}

	for _, u := range users {
		for _, id := range u.VehicleInfo {
			ownedByUser[id] = struct{}{}
			if _, ok := known[id]; !ok {
				report.DanglingUserRefs = append(report.DanglingUserRefs, id)
			}
		}
	}
	for _, d := range dealerships {
		for _, id := range d.SoldVehicles {
			ownedByDealership[id] = struct{}{}
			if _, ok := known[id]; !ok {
				report.DanglingDealershipRefs = append(report.DanglingDealershipRefs, id)
			}
		}
	}
	for _, v := range vehicles {
		if _, ok := ownedByUser[v.VehicleID]; !ok {
			report.VehiclesWithoutOwner = append(report.VehiclesWithoutOwner, v.VehicleID)
		}
		if _, ok := ownedByDealership[v.VehicleID]; !ok {
			report.VehiclesWithoutDealership = append(report.VehiclesWithoutDealership, v.VehicleID)
		}
	}

	sort.Strings(report.VehiclesWithoutOwner)
	sort.Strings(report.VehiclesWithoutDealership)
	sort.Strings(report.DanglingUserRefs)
	sort.Strings(report.DanglingDealershipRefs)
	return report, nil
}
