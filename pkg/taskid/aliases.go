package taskid

// aliasesV1 maps retired provider ids to their current names. Kept as
// versioned data so renames extend the table instead of the decode logic.
var aliasesV1 = map[string]string{
	"update-post":     "review-post",
	"blogdescription": "blog-description",
	"core-update":     "update-core",
	"sitelogo":        "site-icon",
}

func canonicalProviderID(id string) string {
	if canonical, ok := aliasesV1[id]; ok {
		return canonical
	}
	return id
}
