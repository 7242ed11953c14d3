package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/issuefeed/backend/pkg/domain"
)

// ProfileRepository persists the public.user_profiles table.
type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileRow struct {
	UserID         string    `db:"user_id"`
	IntentVector   *pgvector `db:"intent_vector"`
	ResumeVector   *pgvector `db:"resume_vector"`
	GithubVector   *pgvector `db:"github_vector"`
	CombinedVector *pgvector `db:"combined_vector"`

	IntentText       string         `db:"intent_text"`
	IntentStackAreas pq.StringArray `db:"intent_stack_areas"`
	IntentLanguages  pq.StringArray `db:"intent_languages"`
	ResumeSkills     pq.StringArray `db:"resume_skills"`
	ResumeJobTitles  pq.StringArray `db:"resume_job_titles"`
	GithubLanguages  pq.StringArray `db:"github_languages"`
	GithubTopics     pq.StringArray `db:"github_topics"`
	GithubUsername   string         `db:"github_username"`

	PreferredLanguages pq.StringArray `db:"preferred_languages"`
	PreferredTopics    pq.StringArray `db:"preferred_topics"`
	MinHeatThreshold   float64        `db:"min_heat_threshold"`

	OnboardingStatus string `db:"onboarding_status"`
	IsCalculating    bool   `db:"is_calculating"`
}

func (r profileRow) toDomain() *domain.UserProfile {
	p := &domain.UserProfile{
		UserID:             r.UserID,
		IntentText:         r.IntentText,
		IntentStackAreas:   []string(r.IntentStackAreas),
		IntentLanguages:    []string(r.IntentLanguages),
		ResumeSkills:       []string(r.ResumeSkills),
		ResumeJobTitles:    []string(r.ResumeJobTitles),
		GithubLanguages:    []string(r.GithubLanguages),
		GithubTopics:       []string(r.GithubTopics),
		GithubUsername:     r.GithubUsername,
		PreferredLanguages: []string(r.PreferredLanguages),
		PreferredTopics:    []string(r.PreferredTopics),
		MinHeatThreshold:   r.MinHeatThreshold,
		OnboardingStatus:   domain.OnboardingStatus(r.OnboardingStatus),
		IsCalculating:      r.IsCalculating,
	}
	if r.IntentVector != nil {
		p.IntentVector = domain.Vector(*r.IntentVector)
	}
	if r.ResumeVector != nil {
		p.ResumeVector = domain.Vector(*r.ResumeVector)
	}
	if r.GithubVector != nil {
		p.GithubVector = domain.Vector(*r.GithubVector)
	}
	if r.CombinedVector != nil {
		p.CombinedVector = domain.Vector(*r.CombinedVector)
	}
	return p
}

func vectorArg(v domain.Vector) any {
	if v == nil {
		return nil
	}
	return pgvector(v).String()
}

// GetOrCreate returns the user's profile, lazily creating one with
// defaults on first access, per spec.md §3 "lazily created on first access
// with defaults".
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var row profileRow
	err := r.db.GetContext(ctx, &row, `
		SELECT user_id, intent_vector, resume_vector, github_vector, combined_vector,
		       intent_text, intent_stack_areas, intent_languages, resume_skills,
		       resume_job_titles, github_languages, github_topics, github_username,
		       preferred_languages, preferred_topics, min_heat_threshold,
		       onboarding_status, is_calculating
		FROM public.user_profiles WHERE user_id = $1`, userID)
	if err == nil {
		return row.toDomain(), nil
	}
	if err != sql.ErrNoRows {
		return nil, dbErr(err, "query profile %s", userID)
	}

	fresh := domain.NewUserProfile(userID)
	if err := r.Save(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Save upserts the full profile row, used both by lazy creation and by
// profile-edit/embedder-callback mutation paths.
func (r *ProfileRepository) Save(ctx context.Context, p *domain.UserProfile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO public.user_profiles (
			user_id, intent_vector, resume_vector, github_vector, combined_vector,
			intent_text, intent_stack_areas, intent_languages, resume_skills,
			resume_job_titles, github_languages, github_topics, github_username,
			preferred_languages, preferred_topics, min_heat_threshold,
			onboarding_status, is_calculating
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (user_id) DO UPDATE SET
			intent_vector = EXCLUDED.intent_vector,
			resume_vector = EXCLUDED.resume_vector,
			github_vector = EXCLUDED.github_vector,
			combined_vector = EXCLUDED.combined_vector,
			intent_text = EXCLUDED.intent_text,
			intent_stack_areas = EXCLUDED.intent_stack_areas,
			intent_languages = EXCLUDED.intent_languages,
			resume_skills = EXCLUDED.resume_skills,
			resume_job_titles = EXCLUDED.resume_job_titles,
			github_languages = EXCLUDED.github_languages,
			github_topics = EXCLUDED.github_topics,
			github_username = EXCLUDED.github_username,
			preferred_languages = EXCLUDED.preferred_languages,
			preferred_topics = EXCLUDED.preferred_topics,
			min_heat_threshold = EXCLUDED.min_heat_threshold,
			onboarding_status = EXCLUDED.onboarding_status,
			is_calculating = EXCLUDED.is_calculating`,
		p.UserID, vectorArg(p.IntentVector), vectorArg(p.ResumeVector),
		vectorArg(p.GithubVector), vectorArg(p.CombinedVector),
		p.IntentText, strArray(p.IntentStackAreas), strArray(p.IntentLanguages),
		strArray(p.ResumeSkills), strArray(p.ResumeJobTitles), strArray(p.GithubLanguages),
		strArray(p.GithubTopics), p.GithubUsername,
		strArray(p.PreferredLanguages), strArray(p.PreferredTopics), p.MinHeatThreshold,
		string(p.OnboardingStatus), p.IsCalculating,
	)
	return dbErr(err, "save profile %s", p.UserID)
}
