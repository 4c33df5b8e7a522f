package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/ManuelReschke/LaunchBoard/app/models"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/cache"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/database"
	"github.com/ManuelReschke/LaunchBoard/internal/pkg/launchcalendar"
)

const (
	CacheKeyLaunchesTotal = "statistics:launches:total"
	CacheKeyLaunchesDaily = "statistics:launches:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyProjects      = "statistics:projects:total"
	CacheKeyUsers         = "statistics:users:total"
	CacheExpiration       = 30 * time.Minute
)

// StatisticsData holds the headline numbers for the start page.
type StatisticsData struct {
	TodayLaunches int
	TotalLaunches int
	TotalProjects int
	TotalUsers    int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cache is due for a refresh.
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cache when the interval has passed.
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

// ResetCacheUpdateTimer forces the next UpdateCacheIfNeeded to refresh.
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recounts all statistics and stores them in the cache.
func UpdateStatisticsCache() error {
	counts := []struct {
		key   string
		count func() (int64, error)
	}{
		{CacheKeyLaunchesTotal, countTotalLaunches},
		{todayLaunchesKey(), countTodayLaunches},
		{CacheKeyProjects, countTotalProjects},
		{CacheKeyUsers, countTotalUsers},
	}

	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			log.Printf("Error counting for %s: %v", c.key, err)
			return err
		}
		if err := cache.Set(c.key, strconv.FormatInt(n, 10), CacheExpiration); err != nil {
			log.Printf("Error caching %s: %v", c.key, err)
			return err
		}
	}
	return nil
}

// GetTodayLaunches returns the number of launches live today from cache or
// database.
func GetTodayLaunches() int {
	return getCachedOrCount(todayLaunchesKey(), countTodayLaunches)
}

// GetTotalLaunches returns the number of live or completed launches from
// cache or database.
func GetTotalLaunches() int {
	return getCachedOrCount(CacheKeyLaunchesTotal, countTotalLaunches)
}

// GetTotalProjects returns the total number of submitted projects from
// cache or database.
func GetTotalProjects() int {
	return getCachedOrCount(CacheKeyProjects, countTotalProjects)
}

// GetTotalUsers returns the total number of users from cache or database.
func GetTotalUsers() int {
	return getCachedOrCount(CacheKeyUsers, countTotalUsers)
}

// GetStatisticsData returns all statistics data for rendering.
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TodayLaunches: GetTodayLaunches(),
		TotalLaunches: GetTotalLaunches(),
		TotalProjects: GetTotalProjects(),
		TotalUsers:    GetTotalUsers(),
	}
}

func todayLaunchesKey() string {
	today := time.Now().UTC().Format(launchcalendar.DateFormat)
	return fmt.Sprintf(CacheKeyLaunchesDaily, today)
}

func getCachedOrCount(key string, count func() (int64, error)) int {
	val, err := cache.Get(key)
	if err == nil {
		n, convErr := strconv.ParseInt(val, 10, 64)
		if convErr != nil {
			return 0
		}
		return int(n)
	}

	n, err := count()
	if err != nil {
		log.Printf("Error counting for %s: %v", key, err)
		return 0
	}
	if err := cache.Set(key, strconv.FormatInt(n, 10), CacheExpiration); err != nil {
		log.Printf("Error caching %s: %v", key, err)
	}
	return int(n)
}

func countTotalLaunches() (int64, error) {
	var count int64
	err := database.GetDB().Model(&models.Project{}).
		Where("status IN ?", []string{models.StatusOngoing, models.StatusLaunched}).
		Count(&count).Error
	return count, err
}

func countTodayLaunches() (int64, error) {
	var count int64
	err := database.GetDB().Model(&models.Project{}).
		Where("status = ?", models.StatusOngoing).
		Count(&count).Error
	return count, err
}

func countTotalProjects() (int64, error) {
	var count int64
	err := database.GetDB().Model(&models.Project{}).Count(&count).Error
	return count, err
}

func countTotalUsers() (int64, error) {
	var count int64
	err := database.GetDB().Model(&models.User{}).Count(&count).Error
	return count, err
}
