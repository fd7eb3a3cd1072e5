package simulate

import (
	"fmt"
	"log"
	"sort"
)

// verifyResults cross-checks per-user rank lookups against the leaderboard.
func verifyResults(config *Config, rankings, leaderboard []Entry) error {
	log.Println("Verifying results...")

	if len(rankings) == 0 {
		return fmt.Errorf("no rankings to verify")
	}

	// Sort rankings by total score (descending) to get top performers
	sortedRankings := make([]Entry, len(rankings))
	copy(sortedRankings, rankings)
	sort.Slice(sortedRankings, func(i, j int) bool {
		if sortedRankings[i].TotalScore != sortedRankings[j].TotalScore {
			return sortedRankings[i].TotalScore > sortedRankings[j].TotalScore
		}
		return sortedRankings[i].UserID < sortedRankings[j].UserID
	})

	if len(leaderboard) > 0 {
		if err := verifyLeaderboardConsistency(sortedRankings, leaderboard); err != nil {
			log.Printf("Leaderboard consistency warning: %v", err)
		} else {
			log.Println("Leaderboard consistency verified")
		}
	}

	displayTopPerformers(sortedRankings, leaderboard, config.Verbose)

	log.Println("Result verification completed")
	return nil
}

// verifyLeaderboardConsistency checks ordering, shared-rank ties, and
// agreement between the board and individual rank lookups.
func verifyLeaderboardConsistency(sortedRankings, leaderboard []Entry) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	topRanking := sortedRankings[0]
	topLeaderboard := leaderboard[0]

	if topRanking.UserID != topLeaderboard.UserID {
		return fmt.Errorf("top leaderboard entry (%s) does not match top ranked athlete (%s)",
			topLeaderboard.UserID, topRanking.UserID)
	}

	if topRanking.TotalScore != topLeaderboard.TotalScore {
		return fmt.Errorf("top leaderboard score (%.1f) does not match top ranked score (%.1f)",
			topLeaderboard.TotalScore, topRanking.TotalScore)
	}

	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].TotalScore > leaderboard[i-1].TotalScore {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has higher score than entry %d",
				i, i-1)
		}
		// Equal scores must share a rank; otherwise ranks skip past ties.
		if leaderboard[i].TotalScore == leaderboard[i-1].TotalScore {
			if leaderboard[i].Rank != leaderboard[i-1].Rank {
				return fmt.Errorf("tied entries %d and %d do not share a rank", i-1, i)
			}
		} else if leaderboard[i].Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d, want %d", i, leaderboard[i].Rank, i+1)
		}
	}

	return nil
}

// displayTopPerformers shows the top performers from rankings and leaderboard.
func displayTopPerformers(sortedRankings, leaderboard []Entry, verbose bool) {
	topN := 10
	if len(sortedRankings) < topN {
		topN = len(sortedRankings)
	}

	log.Printf("Top %d athletes from rank lookups:", topN)
	for i := 0; i < topN; i++ {
		entry := sortedRankings[i]
		log.Printf("   %d. %s - Score: %.1f", entry.Rank, entry.UserID, entry.TotalScore)
	}

	if len(leaderboard) > 0 {
		leaderboardTopN := topN
		if len(leaderboard) < leaderboardTopN {
			leaderboardTopN = len(leaderboard)
		}

		log.Printf("Top %d athletes from leaderboard:", leaderboardTopN)
		for i := 0; i < leaderboardTopN; i++ {
			entry := leaderboard[i]
			log.Printf("   %d. %s - Score: %.1f", entry.Rank, entry.UserID, entry.TotalScore)
		}
	}

	if verbose && len(sortedRankings) > 0 {
		avgScore := calculateAverageScore(sortedRankings)
		maxScore := sortedRankings[0].TotalScore
		minScore := sortedRankings[len(sortedRankings)-1].TotalScore

		log.Printf(`Score statistics:
   Average: %.1f
   Maximum: %.1f
   Minimum: %.1f
`, avgScore, maxScore, minScore)
	}
}

// calculateAverageScore calculates the average total score from rankings.
func calculateAverageScore(rankings []Entry) float64 {
	if len(rankings) == 0 {
		return 0
	}

	sum := 0.0
	for _, entry := range rankings {
		sum += entry.TotalScore
	}

	return sum / float64(len(rankings))
}
