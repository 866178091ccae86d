package usage

import "time"

const periodLength = 30 * 24 * time.Hour

// PlanLimits returns the document and storage allowances for a plan.
// Unknown plans get free-tier limits.
func PlanLimits(plan string) (docLimit int, storageLimitBytes int64) {
	switch plan {
	case "basic":
		return 50, 1 << 30 // 1GB
	case "pro":
		return 500, 10 << 30 // 10GB
	case "enterprise":
		return 10000, 100 << 30 // 100GB
	default:
		return 5, 100 << 20 // 100MB
	}
}

// MaxUploadBytes returns the per-file upload cap for a plan.
func MaxUploadBytes(plan string) int64 {
	switch plan {
	case "basic":
		return 50 << 20
	case "pro":
		return 100 << 20
	case "enterprise":
		return 200 << 20
	default:
		return 25 << 20
	}
}

func defaultUsage(plan string) Usage {
	docLimit, storageLimit := PlanLimits(plan)
	if plan == "" {
		plan = "free"
	}
	return Usage{
		Plan:              plan,
		DocLimit:          docLimit,
		StorageLimitBytes: storageLimit,
		ResetsAt:          time.Now().UTC().Add(periodLength),
	}
}
