package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ssonotify/internal/model"
	"ssonotify/pkg/metrics"
)

const (
	// ExpiryWindowDays is how far ahead the expiring-soon task looks.
	ExpiryWindowDays = 30
	// UnusedEligibleDays is the minimum eligibility age before the
	// unused-benefit reminder fires.
	UnusedEligibleDays = 30
	// StatusChangeWindow is the lookback for freshly decided benefits.
	StatusChangeWindow = 24 * time.Hour
)

type benefitSource interface {
	ListExpiring(ctx context.Context, days int) ([]model.Benefit, error)
	ListUnused(ctx context.Context, days int) ([]model.Benefit, error)
	ListRecentlyDecided(ctx context.Context, since time.Time) ([]model.Benefit, error)
}

type profileSource interface {
	ListUnenrolledConsented(ctx context.Context) ([]model.Profile, error)
	LineUserIDs(ctx context.Context, memberIDs []string) (map[string]string, error)
}

type batchDispatcher interface {
	DispatchBatch(ctx context.Context, cands []model.Candidate) []model.Outcome
}

// Engine runs the four prediction tasks concurrently, dispatches the
// combined candidate list and aggregates a run summary. A task failure
// fails the whole run: a broken predicate is a data-integrity bug that
// must surface loudly, not degrade into "zero candidates found".
type Engine struct {
	benefits   benefitSource
	profiles   profileSource
	dispatcher batchDispatcher
	audit      AuditSink
	logger     *zap.Logger
}

func NewEngine(
	benefits benefitSource,
	profiles profileSource,
	dispatcher batchDispatcher,
	audit AuditSink,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		benefits:   benefits,
		profiles:   profiles,
		dispatcher: dispatcher,
		audit:      audit,
		logger:     logger,
	}
}

// Run executes one full prediction run.
func (e *Engine) Run(ctx context.Context) (model.Summary, error) {
	start := time.Now()

	var expiry, unused, section40, payment []model.Candidate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expiry, err = e.predictBenefitExpiry(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		unused, err = e.predictUnusedBenefits(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		section40, err = e.predictSection40Outreach(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		payment, err = e.predictPaymentStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Summary{}, fmt.Errorf("prediction task failed: %w", err)
	}

	metrics.PredictCandidates.WithLabelValues("expiry").Add(float64(len(expiry)))
	metrics.PredictCandidates.WithLabelValues("unused").Add(float64(len(unused)))
	metrics.PredictCandidates.WithLabelValues("section40").Add(float64(len(section40)))
	metrics.PredictCandidates.WithLabelValues("payment").Add(float64(len(payment)))

	all := make([]model.Candidate, 0, len(expiry)+len(unused)+len(section40)+len(payment))
	all = append(all, expiry...)
	all = append(all, unused...)
	all = append(all, section40...)
	all = append(all, payment...)

	results := e.dispatcher.DispatchBatch(ctx, all)

	summary := model.Summary{
		Total: len(all),
		Breakdown: map[string]int{
			"expiry":    len(expiry),
			"unused":    len(unused),
			"section40": len(section40),
			"payment":   len(payment),
		},
	}
	for _, res := range results {
		switch {
		case res.Skipped():
			summary.Skipped++
		case res.Success && len(res.Channels) > 0:
			summary.Sent++
		case !res.Success:
			summary.Failed++
		}
	}
	summary.DurationMS = time.Since(start).Milliseconds()
	metrics.ObserveRun(time.Since(start))

	e.audit.Record(ctx, "predict_notifications", "notifications", summary)

	e.logger.Info("Prediction run completed",
		zap.Int("total", summary.Total),
		zap.Int("sent", summary.Sent),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int64("duration_ms", summary.DurationMS),
	)
	return summary, nil
}

// predictBenefitExpiry: active benefits expiring within 30 days.
func (e *Engine) predictBenefitExpiry(ctx context.Context) ([]model.Candidate, error) {
	benefits, err := e.benefits.ListExpiring(ctx, ExpiryWindowDays)
	if err != nil {
		return nil, fmt.Errorf("expiry query: %w", err)
	}
	if len(benefits) == 0 {
		return nil, nil
	}

	lineMap, err := e.profiles.LineUserIDs(ctx, distinctMembers(benefits))
	if err != nil {
		return nil, fmt.Errorf("line lookup: %w", err)
	}

	cands := make([]model.Candidate, 0, len(benefits))
	for _, b := range benefits {
		daysLeft := int(math.Ceil(time.Until(b.ExpiryDate).Hours() / 24))
		name := model.BenefitName(b.BenefitType)
		cands = append(cands, model.Candidate{
			MemberID: b.MemberID,
			Category: model.CategoryBenefitReminder,
			Title:    fmt.Sprintf("สิทธิ์ %s ใกล้หมดอายุ", name),
			Body: fmt.Sprintf("สิทธิ์ของคุณจะหมดอายุในอีก %d วัน (%s) กรุณาดำเนินการก่อนหมดเขต",
				daysLeft, b.ExpiryDate.Format("2006-01-02")),
			Channels:   channelsFor(b.MemberID, lineMap),
			LineUserID: lineMap[b.MemberID],
			Phone:      b.Phone,
		})
	}
	return cands, nil
}

// predictUnusedBenefits: active benefits never claimed, eligible ≥ 30 days.
func (e *Engine) predictUnusedBenefits(ctx context.Context) ([]model.Candidate, error) {
	benefits, err := e.benefits.ListUnused(ctx, UnusedEligibleDays)
	if err != nil {
		return nil, fmt.Errorf("unused query: %w", err)
	}
	if len(benefits) == 0 {
		return nil, nil
	}

	lineMap, err := e.profiles.LineUserIDs(ctx, distinctMembers(benefits))
	if err != nil {
		return nil, fmt.Errorf("line lookup: %w", err)
	}

	cands := make([]model.Candidate, 0, len(benefits))
	for _, b := range benefits {
		name := model.BenefitName(b.BenefitType)
		cands = append(cands, model.Candidate{
			MemberID:   b.MemberID,
			Category:   model.CategoryBenefitReminder,
			Title:      fmt.Sprintf("คุณยังมีสิทธิ์ %s ที่ยังไม่ได้ใช้", name),
			Body:       "คุณมีสิทธิ์ประกันสังคมที่ยังไม่ได้ใช้งาน ตรวจสอบและใช้สิทธิ์ได้ที่ SSO Smart Service",
			Channels:   channelsFor(b.MemberID, lineMap),
			LineUserID: lineMap[b.MemberID],
			Phone:      b.Phone,
		})
	}
	return cands, nil
}

// predictSection40Outreach: consented members with no section enrollment.
func (e *Engine) predictSection40Outreach(ctx context.Context) ([]model.Candidate, error) {
	profiles, err := e.profiles.ListUnenrolledConsented(ctx)
	if err != nil {
		return nil, fmt.Errorf("outreach query: %w", err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	memberIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		memberIDs = append(memberIDs, p.MemberID)
	}
	lineMap, err := e.profiles.LineUserIDs(ctx, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("line lookup: %w", err)
	}

	cands := make([]model.Candidate, 0, len(profiles))
	for _, p := range profiles {
		cands = append(cands, model.Candidate{
			MemberID:   p.MemberID,
			Category:   model.CategorySection40Outreach,
			Title:      "สมัครประกันสังคม มาตรา 40 วันนี้",
			Body:       "ผู้ประกอบอาชีพอิสระ สมัครได้ง่าย เพียง 70-100 บาท/เดือน รับสิทธิ์เจ็บป่วย ทุพพลภาพ ชราภาพ",
			Channels:   channelsFor(p.MemberID, lineMap),
			LineUserID: lineMap[p.MemberID],
			Phone:      p.Phone,
		})
	}
	return cands, nil
}

// predictPaymentStatus: benefits decided within the last 24h that carry
// a monetary amount.
func (e *Engine) predictPaymentStatus(ctx context.Context) ([]model.Candidate, error) {
	benefits, err := e.benefits.ListRecentlyDecided(ctx, time.Now().Add(-StatusChangeWindow))
	if err != nil {
		return nil, fmt.Errorf("payment query: %w", err)
	}
	if len(benefits) == 0 {
		return nil, nil
	}

	lineMap, err := e.profiles.LineUserIDs(ctx, distinctMembers(benefits))
	if err != nil {
		return nil, fmt.Errorf("line lookup: %w", err)
	}

	cands := make([]model.Candidate, 0, len(benefits))
	for _, b := range benefits {
		approved := b.Status == "active"
		name := model.BenefitName(b.BenefitType)

		var title, body string
		if approved {
			title = fmt.Sprintf("อนุมัติสิทธิ์ %s แล้ว", name)
			body = fmt.Sprintf("สิทธิ์ %s ของคุณได้รับการอนุมัติ จำนวน %s ตรวจสอบรายละเอียดในแอป",
				name, formatBaht(b.Amount))
		} else {
			title = fmt.Sprintf("สิทธิ์ %s ไม่ผ่านการพิจารณา", name)
			body = fmt.Sprintf("สิทธิ์ %s ไม่ผ่านการพิจารณา กรุณาติดต่อสำนักงานประกันสังคม โทร 1506", name)
		}

		cands = append(cands, model.Candidate{
			MemberID:   b.MemberID,
			Category:   model.CategoryPaymentStatus,
			Title:      title,
			Body:       body,
			Channels:   channelsFor(b.MemberID, lineMap),
			LineUserID: lineMap[b.MemberID],
			Phone:      b.Phone,
		})
	}
	return cands, nil
}

func distinctMembers(benefits []model.Benefit) []string {
	seen := make(map[string]struct{}, len(benefits))
	ids := make([]string, 0, len(benefits))
	for _, b := range benefits {
		if _, ok := seen[b.MemberID]; ok {
			continue
		}
		seen[b.MemberID] = struct{}{}
		ids = append(ids, b.MemberID)
	}
	return ids
}

// channelsFor always includes in-app; LINE is added only when the member
// has a resolved handle.
func channelsFor(memberID string, lineMap map[string]string) []model.Channel {
	channels := []model.Channel{model.ChannelInApp}
	if _, ok := lineMap[memberID]; ok {
		channels = append(channels, model.ChannelLine)
	}
	return channels
}

// formatBaht renders an amount as ฿ with thousands separators, the way
// the portal displays benefit payouts.
func formatBaht(amount float64) string {
	n := int64(math.Round(amount))
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return "฿" + s
	}
	var out []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digit)
	}
	return "฿" + string(out)
}
