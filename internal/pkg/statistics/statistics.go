// Package statistics computes the community figures shown on the home page:
// member counts, the combined monthly pledge and the capital raised so far.
// Values are cached in Redis and recomputed at most every few minutes.
package statistics

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/pledgefox/PledgeFox/app/models"
	"github.com/pledgefox/PledgeFox/internal/pkg/cache"
	"github.com/pledgefox/PledgeFox/internal/pkg/database"
)

const (
	CacheKeyMembersTotal  = "statistics:members:total"
	CacheKeyMembersActive = "statistics:members:active"
	CacheKeyPledgeMonthly = "statistics:pledge:monthly_cents"
	CacheKeyCapitalTotal  = "statistics:capital:total_cents"
	CacheExpiration       = 30 * time.Minute
)

// StatisticsData holds the community figures for the home page
type StatisticsData struct {
	TotalMembers       int
	ActiveMembers      int
	MonthlyPledgeCents int64
	CapitalTotalCents  int64
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached figures are due for a refresh
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded recomputes the cached figures when they are due
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next call to recompute
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recomputes all figures and stores them in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalMembers int64
	if err := db.Model(&models.User{}).Count(&totalMembers).Error; err != nil {
		log.Printf("Error counting members: %v", err)
		return err
	}

	var activeMembers int64
	if err := db.Model(&models.User{}).
		Where("status = ? AND monthly_pledge_cents > 0", models.STATUS_ACTIVE).
		Count(&activeMembers).Error; err != nil {
		log.Printf("Error counting active members: %v", err)
		return err
	}

	var monthlyPledge int64
	if err := db.Model(&models.User{}).
		Where("status = ?", models.STATUS_ACTIVE).
		Select("COALESCE(SUM(monthly_pledge_cents), 0)").
		Scan(&monthlyPledge).Error; err != nil {
		log.Printf("Error summing monthly pledges: %v", err)
		return err
	}

	var capitalTotal int64
	if err := db.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&capitalTotal).Error; err != nil {
		log.Printf("Error summing capital ledger: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyMembersTotal, strconv.FormatInt(totalMembers, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeyMembersActive, strconv.FormatInt(activeMembers, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeyPledgeMonthly, strconv.FormatInt(monthlyPledge, 10), CacheExpiration); err != nil {
		return err
	}
	return cache.Set(CacheKeyCapitalTotal, strconv.FormatInt(capitalTotal, 10), CacheExpiration)
}

func cachedInt64(key string) (int64, bool) {
	val, err := cache.Get(key)
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetTotalMembers returns the member count from cache, falling back to the database
func GetTotalMembers() int {
	if n, ok := cachedInt64(CacheKeyMembersTotal); ok {
		return int(n)
	}

	var count int64
	if err := database.GetDB().Model(&models.User{}).Count(&count).Error; err != nil {
		log.Printf("Error counting members: %v", err)
		return 0
	}
	_ = cache.Set(CacheKeyMembersTotal, strconv.FormatInt(count, 10), CacheExpiration)
	return int(count)
}

// GetActiveMembers returns the active contributing member count
func GetActiveMembers() int {
	if n, ok := cachedInt64(CacheKeyMembersActive); ok {
		return int(n)
	}

	var count int64
	if err := database.GetDB().Model(&models.User{}).
		Where("status = ? AND monthly_pledge_cents > 0", models.STATUS_ACTIVE).
		Count(&count).Error; err != nil {
		log.Printf("Error counting active members: %v", err)
		return 0
	}
	_ = cache.Set(CacheKeyMembersActive, strconv.FormatInt(count, 10), CacheExpiration)
	return int(count)
}

// GetMonthlyPledgeCents returns the combined monthly pledge of active members
func GetMonthlyPledgeCents() int64 {
	if n, ok := cachedInt64(CacheKeyPledgeMonthly); ok {
		return n
	}

	var sum int64
	if err := database.GetDB().Model(&models.User{}).
		Where("status = ?", models.STATUS_ACTIVE).
		Select("COALESCE(SUM(monthly_pledge_cents), 0)").
		Scan(&sum).Error; err != nil {
		log.Printf("Error summing monthly pledges: %v", err)
		return 0
	}
	_ = cache.Set(CacheKeyPledgeMonthly, strconv.FormatInt(sum, 10), CacheExpiration)
	return sum
}

// GetCapitalTotalCents returns the all-time capital ledger total
func GetCapitalTotalCents() int64 {
	if n, ok := cachedInt64(CacheKeyCapitalTotal); ok {
		return n
	}

	var sum int64
	if err := database.GetDB().Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&sum).Error; err != nil {
		log.Printf("Error summing capital ledger: %v", err)
		return 0
	}
	_ = cache.Set(CacheKeyCapitalTotal, strconv.FormatInt(sum, 10), CacheExpiration)
	return sum
}

// GetStatisticsData returns all figures, refreshing the cache when due
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalMembers:       GetTotalMembers(),
		ActiveMembers:      GetActiveMembers(),
		MonthlyPledgeCents: GetMonthlyPledgeCents(),
		CapitalTotalCents:  GetCapitalTotalCents(),
	}
}
