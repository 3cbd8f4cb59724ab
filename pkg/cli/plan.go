package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcortez-ml/nutria/pkg/model"
	"github.com/mcortez-ml/nutria/pkg/nutrition"
	"github.com/urfave/cli/v3"
)

func planCommand() *cli.Command {
	var (
		cfg      config
		sex      string
		age      int64
		weight   float64
		height   float64
		activity string
		goal     string
		formula  string
	)

	flags := []cli.Flag{
		&cli.StringFlag{Name: "sexo", Usage: "hombre | mujer", Required: true, Destination: &sex},
		&cli.IntFlag{Name: "edad", Usage: "Edad en años", Required: true, Destination: &age},
		&cli.FloatFlag{Name: "peso-kg", Usage: "Peso en kilogramos", Required: true, Destination: &weight},
		&cli.FloatFlag{Name: "estatura-cm", Usage: "Estatura en centímetros", Required: true, Destination: &height},
		&cli.StringFlag{Name: "actividad", Usage: "sedentario | ligero | moderado | alto | atleta", Required: true, Destination: &activity},
		&cli.StringFlag{Name: "objetivo", Usage: "perder_grasa | ganar_musculo | mantener | rendimiento | salud_metabolica", Required: true, Destination: &goal},
		&cli.StringFlag{Name: "formula", Usage: "mifflin | harris | directa", Value: "mifflin", Destination: &formula},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "plan",
		Usage: "Generate a nutrition plan from patient data",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			profile := model.PatientProfile{
				Sex:           model.Sex(sex),
				Age:           int(age),
				WeightKg:      weight,
				HeightCm:      height,
				ActivityLevel: model.ActivityLevel(activity),
				Goal:          model.Goal(goal),
				Formula:       model.Formula(formula),
			}

			plan, err := nutrition.GeneratePlan(profile)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(plan, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", out)
			return nil
		},
	}
}
