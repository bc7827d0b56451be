package dashboard

import (
	"context"
	"fmt"
	"strconv"

	"transitdash/internal/domain"
	"transitdash/internal/present"
	"transitdash/internal/view"
)

type featureShare struct {
	domain.FeatureImportance
	Share domain.Number
}

// trainView retrains the demand model and reports its error metrics and
// feature importances.
type trainView struct {
	query    *view.QueryController[TrainQuery, domain.TrainingReport]
	features *view.Paged[featureShare]
}

func newTrainView(e env) View {
	v := &trainView{features: view.NewPaged[featureShare](e.pageSize)}
	v.query = view.NewQuery("train_model",
		func(ctx context.Context, _ TrainQuery) (domain.TrainingReport, error) {
			return e.src.TrainModel(ctx)
		},
		view.QueryHooks[TrainQuery, domain.TrainingReport]{
			Validate: func(TrainQuery) error { return nil },
			OnChange: func(r domain.TrainingReport) {
				weights := make([]domain.Number, len(r.FeatureImportance))
				for i, f := range r.FeatureImportance {
					weights[i] = f.Importance
				}
				shares := present.Shares(weights)
				rows := make([]featureShare, len(r.FeatureImportance))
				for i, f := range r.FeatureImportance {
					rows[i] = featureShare{FeatureImportance: f, Share: shares[i]}
				}
				v.features.Reset(rows)
			},
		},
		e.viewOptions()...,
	)
	return v
}

func (v *trainView) Name() string  { return "train_model" }
func (v *trainView) Title() string { return "Train Model" }
func (v *trainView) Open(Runner)   {}
func (v *trainView) Close()        { v.query.Close() }

func (v *trainView) Apply(a Action, r Runner) error {
	switch a.Type {
	case ActionInput:
		return nil
	case ActionSubmit:
		if t := v.query.Submit(); t != nil {
			r.Run(v.Name(), t)
		}
		return nil
	case ActionNext, ActionPrev:
		return page(v.Name(), []listRef{{"features", v.features}}, a)
	default:
		return unsupported(v.Name(), a)
	}
}

func (v *trainView) Snapshot() Snapshot {
	s := Snapshot{
		View:   v.Name(),
		Title:  v.Title(),
		Status: v.query.Status(),
		Error:  errString(v.query.Err()),
		Tables: []present.Table{
			table("features", "Feature Importance", []string{"Feature", "Importance", "Share (%)"},
				present.Rows(v.features.Page(), func(f featureShare) present.Row {
					return present.Row{Cells: []string{f.Feature, present.Decimal(f.Importance, 4), present.Decimal(f.Share, 2)}}
				}), v.features.State()),
		},
	}
	report, ok := v.query.Result()
	if !ok {
		return s
	}
	s.Facts = []present.Fact{
		{Label: "Message", Value: report.Message},
		{Label: "Mean Squared Error", Value: present.Decimal(report.MSE, 4)},
		{Label: "Mean Absolute Error", Value: present.Decimal(report.MAE, 4)},
	}
	s.Charts = []present.Series{
		present.SeriesOf("Feature Importance (%)", v.features.Items(),
			func(f featureShare) string { return f.Feature },
			func(f featureShare) domain.Number { return f.Share }),
	}
	return s
}

// demandView predicts ridership for one route and time slot.
type demandView struct {
	query *view.QueryController[DemandQuery, domain.DemandPrediction]
}

func newDemandView(e env) View {
	return &demandView{
		query: view.NewQuery("demand",
			func(ctx context.Context, q DemandQuery) (domain.DemandPrediction, error) {
				in, err := demandInput(q)
				if err != nil {
					return domain.DemandPrediction{}, err
				}
				return e.src.PredictDemand(ctx, in)
			},
			view.QueryHooks[DemandQuery, domain.DemandPrediction]{
				Normalize: normalizeDemand,
				Validate:  validateDemand,
			},
			e.viewOptions()...,
		),
	}
}

// validateDemand checks the tags and then that every numeric field parses,
// so out of range values are rejected before anything is sent.
func validateDemand(q DemandQuery) error {
	if err := view.ValidateStruct(q); err != nil {
		return err
	}
	if _, err := demandInput(q); err != nil {
		return fmt.Errorf("%w: %w", view.ErrValidationFailed, err)
	}
	return nil
}

// demandInput converts a validated form into the request body.
func demandInput(q DemandQuery) (domain.DemandInput, error) {
	in := domain.DemandInput{RouteID: q.RouteID, Date: q.Date, Time: q.Time}
	var err error
	if in.TotalStops, err = strconv.Atoi(q.TotalStops); err != nil {
		return in, fmt.Errorf("parsing total_stops: %w", err)
	}
	if in.AvgSpeed, err = strconv.ParseFloat(q.AvgSpeed, 64); err != nil {
		return in, fmt.Errorf("parsing avg_speed: %w", err)
	}
	if in.AvgDuration, err = strconv.ParseFloat(q.AvgDuration, 64); err != nil {
		return in, fmt.Errorf("parsing avg_duration: %w", err)
	}
	if in.AvgDistance, err = strconv.ParseFloat(q.AvgDistance, 64); err != nil {
		return in, fmt.Errorf("parsing avg_distance: %w", err)
	}
	return in, nil
}

func (v *demandView) Name() string  { return "demand" }
func (v *demandView) Title() string { return "Demand Prediction" }
func (v *demandView) Open(Runner)   {}
func (v *demandView) Close()        { v.query.Close() }

func (v *demandView) Apply(a Action, r Runner) error {
	switch a.Type {
	case ActionInput:
		q, err := bindParams(v.query.Input(), a.Params)
		if err != nil {
			return err
		}
		v.query.SetInput(q)
		return nil
	case ActionSubmit:
		if t := v.query.Submit(); t != nil {
			r.Run(v.Name(), t)
		}
		return nil
	default:
		return unsupported(v.Name(), a)
	}
}

func (v *demandView) Snapshot() Snapshot {
	inputs, _ := inputsOf(v.query.Input())
	s := Snapshot{
		View:   v.Name(),
		Title:  v.Title(),
		Status: v.query.Status(),
		Error:  errString(v.query.Err()),
		Inputs: inputs,
	}
	if pred, ok := v.query.Result(); ok {
		s.Facts = []present.Fact{{Label: "Predicted Demand", Value: present.Integer(pred.PredictedDemand)}}
	}
	return s
}
