package main

import (
	"fmt"

	"github.com/ashin12345678/pfc-balance-app/services"
	"github.com/ashin12345678/pfc-balance-app/utils"

	"github.com/spf13/cobra"
)

var (
	tgtWeight   float64
	tgtHeight   float64
	tgtAge      int
	tgtSex      string
	tgtActivity float64
	tgtGoal     string
	tgtProtein  float64
	tgtFat      float64
	tgtCarb     float64
	tgtFloor    float64
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Compute BMR, TDEE and daily PFC targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := utils.ValidateBodyMetrics(tgtHeight, tgtWeight, tgtAge); err != nil {
			return err
		}
		if err := services.ValidateRatios(tgtProtein, tgtFat, tgtCarb); err != nil {
			return err
		}
		if s := utils.Sex(tgtSex); s != utils.SexMale && s != utils.SexFemale {
			return fmt.Errorf("sex must be male or female, got %q", tgtSex)
		}
		if !utils.ValidActivityMultiplier(tgtActivity) {
			return fmt.Errorf("activity must be one of %v, got %v", utils.ActivityLevels, tgtActivity)
		}
		if !utils.ValidGoal(utils.Goal(tgtGoal)) {
			return fmt.Errorf("goal must be lose, maintain or gain, got %q", tgtGoal)
		}
		t, err := utils.CalculateTargets(utils.BodyProfile{
			WeightKg:           tgtWeight,
			HeightCm:           tgtHeight,
			AgeYears:           tgtAge,
			Sex:                utils.Sex(tgtSex),
			ActivityMultiplier: tgtActivity,
			Goal:               utils.Goal(tgtGoal),
			ProteinRatio:       tgtProtein,
			FatRatio:           tgtFat,
			CarbRatio:          tgtCarb,
			CalorieFloor:       tgtFloor,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), t)
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)

	f := targetsCmd.Flags()
	f.Float64Var(&tgtWeight, "weight", 0, "Body weight in kg")
	f.Float64Var(&tgtHeight, "height", 0, "Height in cm")
	f.IntVar(&tgtAge, "age", 0, "Age in years")
	f.StringVar(&tgtSex, "sex", "male", "male or female")
	f.Float64Var(&tgtActivity, "activity", 1.55, "Activity multiplier (1.2, 1.375, 1.55, 1.725, 1.9)")
	f.StringVar(&tgtGoal, "goal", "maintain", "lose, maintain or gain")
	f.Float64Var(&tgtProtein, "protein", utils.DefaultProteinRatio, "Protein share of calories in percent")
	f.Float64Var(&tgtFat, "fat", utils.DefaultFatRatio, "Fat share of calories in percent")
	f.Float64Var(&tgtCarb, "carb", utils.DefaultCarbRatio, "Carb share of calories in percent")
	f.Float64Var(&tgtFloor, "min-calories", 0, "Lower bound for target calories (0 keeps the default)")
	for _, name := range []string{"weight", "height", "age"} {
		_ = targetsCmd.MarkFlagRequired(name)
	}
}
