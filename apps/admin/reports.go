package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ripoti/core/report"
	"github.com/trezcool/ripoti/core/user"
)

func (cli *commandLine) listReports(sess user.Session, qf report.QueryFilter) error {
	reports, err := cli.client.Reports(context.Background(), sess)
	if err != nil {
		return err
	}

	reports = report.Filter(reports, qf)
	if len(reports) == 0 {
		fmt.Println("no reports found")
		return nil
	}
	for _, rep := range reports {
		fmt.Printf("%-26s %-10s %-12s %-24s %s\n",
			rep.ID, rep.StatusLabel(), rep.SubmissionDate.Format("2006-01-02"), rep.StudentName, rep.ProjectTitle)
	}
	return nil
}
