package dataprocessing

// ValidateQuality checks the funnel counters for logical inconsistencies and
// returns an advisory report. The funnel is expected to be non-increasing
// (doors >= talked >= qualified >= appointments); a violation anywhere in
// the set fires the warning for that category once. Warnings never reject
// records or block downstream processing.
func (p *Processor) ValidateQuality(records []Record) QualityReport {
	var talkedOverDoors, qualifiedOverTalked, appointmentsOverQualified bool
	for _, r := range records {
		if r.HomeownersTalked > r.DoorsKnocked {
			talkedOverDoors = true
		}
		if r.QualifiedLeads > r.HomeownersTalked {
			qualifiedOverTalked = true
		}
		if r.AppointmentsSet > r.QualifiedLeads {
			appointmentsOverQualified = true
		}
	}

	var warnings []string
	if talkedOverDoors {
		warnings = append(warnings, "some records have more homeowners talked than doors knocked")
	}
	if qualifiedOverTalked {
		warnings = append(warnings, "some records have more qualified leads than homeowners talked")
	}
	if appointmentsOverQualified {
		warnings = append(warnings, "some records have more appointments than qualified leads")
	}

	return QualityReport{
		Valid:     len(warnings) == 0,
		Warnings:  warnings,
		TotalRows: len(records),
	}
}
