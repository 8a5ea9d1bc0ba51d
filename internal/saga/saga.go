// saga реализует многошаговый процесс с компенсациями:
// упорядоченный список шагов (run, compensate), при ошибке любого шага
// компенсации выполняются в обратном порядке. Используется регистрацией
// для гарантии «identity и анкета существуют вместе или не существуют вовсе».
package saga

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/noorportal/account-service/pkg/log"
)

// compensateTimeout — бюджет одной компенсации. Компенсации выполняются
// на context.WithoutCancel от исходного контекста: отмена/дедлайн упавшего
// шага не должны мешать откату.
const compensateTimeout = 10 * time.Second

// Step — один шаг процесса.
//   - Run выполняет действие; Timeout > 0 ограничивает его собственным дедлайном.
//   - Compensate откатывает эффекты шага (best-effort); nil допустим.
//     Компенсация упавшего шага тоже выполняется: шаг мог оставить
//     частичные эффекты (например, недописанную запись).
type Step struct {
	Name       string
	Timeout    time.Duration
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Execute выполняет шаги по порядку.
//
// Поведение при ошибке шага i:
//   - компенсации шагов i, i-1, ..., 0 запускаются в обратном порядке;
//   - каждая компенсация получает собственный bounded context,
//     не зависящий от отмены исходного;
//   - ошибки компенсаций не возвращаются вызывающему — только логируются
//     (известный риск рассинхронизации, сверка выполняется внешним процессом);
//   - вызывающему возвращается исходная ошибка упавшего шага.
func Execute(ctx context.Context, steps []Step) error {
	const op = "saga/Execute"

	lg := log.From(ctx)

	for i, step := range steps {
		runCtx := ctx
		cancel := context.CancelFunc(func() {})

		if step.Timeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, step.Timeout)
		}

		err := step.Run(runCtx)
		cancel()

		if err == nil {
			continue
		}

		lg.Warn("saga_step_failed",
			slog.String("op", op),
			slog.String("step", step.Name),
			slog.String("err", err.Error()),
		)

		compensate(ctx, lg, steps[:i+1])

		return fmt.Errorf("%s: step %s: %w", op, step.Name, err)
	}

	return nil
}

// compensate запускает компенсации переданных шагов в обратном порядке.
func compensate(ctx context.Context, lg *slog.Logger, completed []Step) {
	base := context.WithoutCancel(ctx)

	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}

		cctx, cancel := context.WithTimeout(base, compensateTimeout)
		if err := step.Compensate(cctx); err != nil {
			lg.Error("saga_compensation_failed",
				slog.String("step", step.Name),
				slog.String("err", err.Error()),
			)
		}
		cancel()
	}
}
