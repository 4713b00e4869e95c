package cli

import (
	"github.com/jenkins-ecs/jenkins-ecs/pkg/multierr"
	"go.uber.org/zap"
)

type ErrorHandler struct {
	Verbose bool
}

// PrintErr logs err, numbering each error of a [multierr.Error]. Verbose includes the stack traces recorded by
// github.com/pkg/errors.
func (h ErrorHandler) PrintErr(err error) {
	h.printErr(err, 0)
}

func (h ErrorHandler) printErr(err error, num int) int {
	log := zap.S()

	errFmt := "%v"
	if h.Verbose {
		errFmt = "%+v"
	}

	if merr, ok := err.(multierr.Error); ok {
		switch len(merr) {
		case 0:
			return num

		case 1:
			err = merr[0]

		default:
			log.Errorf("%d errors:", len(merr))
			for _, err := range merr {
				num = h.printErr(err, num+1)
			}
			return num
		}
	}

	if num == 0 {
		log.Errorf(errFmt, err)
	} else {
		log.Errorf("[err %d] "+errFmt, num, err)
	}
	return num
}
