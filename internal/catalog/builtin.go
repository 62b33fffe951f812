package catalog

import (
	"github.com/edufiliova/navigator/internal/route"
	"github.com/edufiliova/navigator/model"
)

// Named role policies. Content moderation and the support desk are distinct
// sets: customer service reaches the inboxes only.
const (
	PolicyStaff             = "staff"
	PolicyContentModeration = "content-moderation"
	PolicySupportDesk       = "support-desk"
	PolicyAdminOnly         = "admin-only"
	PolicyTeacherOnly       = "teacher-only"
	PolicyFreelancerOnly    = "freelancer-only"
	PolicyGeneralOnly       = "general-only"
	PolicyStudentOnly       = "student-only"
	PolicyTeaching          = "teaching"
	PolicyFreelancing       = "freelancing"
	PolicyEarnings          = "earnings"
)

// Policies maps policy names to the roles they admit.
var Policies = map[string][]model.Role{
	PolicyStaff:             {model.RoleAdmin, model.RoleAccountant, model.RoleCustomerService, model.RoleModerator},
	PolicyContentModeration: {model.RoleAdmin, model.RoleModerator},
	PolicySupportDesk:       {model.RoleAdmin, model.RoleModerator, model.RoleCustomerService},
	PolicyAdminOnly:         {model.RoleAdmin},
	PolicyTeacherOnly:       {model.RoleTeacher},
	PolicyFreelancerOnly:    {model.RoleFreelancer},
	PolicyGeneralOnly:       {model.RoleGeneral},
	PolicyStudentOnly:       {model.RoleStudent},
	PolicyTeaching:          {model.RoleTeacher, model.RoleAdmin},
	PolicyFreelancing:       {model.RoleFreelancer, model.RoleAdmin},
	PolicyEarnings:          {model.RoleTeacher, model.RoleFreelancer, model.RoleAdmin},
}

type entry struct {
	section     Section
	access      model.Access
	policy      string
	websiteOnly bool
	forward     model.PageState
}

func public(section Section) entry {
	return entry{section: section, access: model.AccessPublic}
}

func website(section Section) entry {
	return entry{section: section, access: model.AccessPublic, websiteOnly: true}
}

func authed(section Section) entry {
	return entry{section: section, access: model.AccessAuthRequired}
}

func restricted(section Section, policy string) entry {
	return entry{section: section, access: model.AccessRoleRestricted, policy: policy}
}

var builtin = map[model.PageState]entry{
	model.StateHome:          {section: SectionMarketing, access: model.AccessLandingOnly, websiteOnly: true},
	model.StateAuth:          {section: SectionAuth, access: model.AccessLandingOnly},
	model.StateNotFound:      public(SectionSystem),
	model.StateAccessDenied:  {section: SectionSystem, access: model.AccessPublic, forward: model.StateHome},
	model.StateGetStarted:    website(SectionAuth),
	model.StateResetPassword: public(SectionAuth),

	model.StateStudentSignup:               public(SectionAuth),
	model.StateCreatorSignup:               public(SectionAuth),
	model.StateTeacherLogin:                public(SectionAuth),
	model.StateTeacherSignup:               public(SectionAuth),
	model.StateTeacherSignupBasic:          public(SectionAuth),
	model.StateTeacherVerifyEmail:          public(SectionAuth),
	model.StateTeacherVerifyCode:           public(SectionAuth),
	model.StateTeacherApplicationStatus:    public(SectionAuth),
	model.StateTeacherApplication:          public(SectionAuth),
	model.StateBecomeTeacher:               website(SectionMarketing),
	model.StateFreelancerLogin:             public(SectionAuth),
	model.StateFreelancerSignup:            public(SectionAuth),
	model.StateFreelancerSignupBasic:       public(SectionAuth),
	model.StateFreelancerApplicationStatus: public(SectionAuth),
	model.StateEmailVerification:           public(SectionAuth),

	model.StatePremium:             website(SectionMarketing),
	model.StateContact:             website(SectionMarketing),
	model.StateDesignTeamContact:   website(SectionMarketing),
	model.StatePrivacy:             website(SectionLegal),
	model.StateTerms:               website(SectionLegal),
	model.StateStudentTerms:        website(SectionLegal),
	model.StateTeacherTerms:        website(SectionLegal),
	model.StateSchoolTerms:         website(SectionLegal),
	model.StateRefundPolicy:        website(SectionLegal),
	model.StatePrivacyPolicy:       website(SectionLegal),
	model.StateCookiesPolicy:       website(SectionLegal),
	model.StateWhatsAppPolicy:      website(SectionLegal),
	model.StateDataRetention:       website(SectionLegal),
	model.StateCopyrightDMCA:       public(SectionLegal),
	model.StateCommunityGuidelines: website(SectionLegal),
	model.StatePaymentBilling:      website(SectionLegal),
	model.StateChatTerms:           website(SectionLegal),
	model.StatePayoutPolicy:        website(SectionLegal),
	model.StateAbout:               website(SectionMarketing),
	model.StateHelp:                website(SectionMarketing),
	model.StateLearnMore:           website(SectionMarketing),
	model.StateAdvertiseWithUs:     website(SectionMarketing),
	model.StateBlog:                website(SectionMarketing),
	model.StateBlogPostDetail:      website(SectionMarketing),
	model.StateCommunity:           website(SectionMarketing),
	model.StateNetworking:          website(SectionMarketing),
	model.StateCustomerPricing:     website(SectionMarketing),
	model.StateCreatorPricing:      website(SectionMarketing),
	model.StateEducationPricing:    website(SectionMarketing),
	model.StateTeacherPricing:      website(SectionMarketing),

	model.StateSubscribe:            public(SectionCommerce),
	model.StateCheckout:             public(SectionCommerce),
	model.StateCheckoutAuth:         public(SectionCommerce),
	model.StateShopAuth:             public(SectionCommerce),
	model.StatePaymentSuccess:       authed(SectionCommerce),
	model.StateBuyVoucher:           website(SectionCommerce),
	model.StateProductShop:          public(SectionCommerce),
	model.StateProductDetail:        public(SectionCommerce),
	model.StateCart:                 public(SectionCommerce),
	model.StateCategoryDetail:       public(SectionCommerce),
	model.StateFreelancerCheckout:   public(SectionCommerce),
	model.StateBannerCreator:        public(SectionCommerce),
	model.StateBannerPayment:        public(SectionCommerce),
	model.StateTransactionDashboard: restricted(SectionAdmin, PolicyAdminOnly),

	model.StateCourseBrowse:           public(SectionLearning),
	model.StateCourseDetail:           public(SectionLearning),
	model.StateCoursePlayer:           public(SectionLearning),
	model.StateEducationLevelSelector: authed(SectionLearning),
	model.StateSurvey:                 authed(SectionLearning),
	model.StateSettings:               authed(SectionLearning),
	model.StateMyCertificates:         authed(SectionLearning),
	model.StateVerifyCertificate:      public(SectionLearning),
	model.StateClaimCertificate:       authed(SectionLearning),

	model.StatePortfolioGallery:  public(SectionPortfolio),
	model.StatePortfolioCreate:   restricted(SectionCreator, PolicyFreelancing),
	model.StatePortfolioEdit:     restricted(SectionCreator, PolicyFreelancing),
	model.StatePortfolioPreview:  public(SectionPortfolio),
	model.StateFreelancerProfile: public(SectionPortfolio),
	model.StateProductCreation:   restricted(SectionCreator, PolicyFreelancing),

	model.StateTeacherMeetings:         restricted(SectionMeetings, PolicyTeaching),
	model.StateTeacherMeetingDetail:    restricted(SectionMeetings, PolicyTeaching),
	model.StateTeacherMeetingsSchedule: restricted(SectionMeetings, PolicyTeaching),
	model.StateStudentMeetings:         authed(SectionMeetings),
	model.StateMeetingRoom:             authed(SectionMeetings),

	model.StateStudentDashboard:         restricted(SectionDashboard, PolicyStudentOnly),
	model.StateTeacherDashboard:         restricted(SectionDashboard, PolicyTeacherOnly),
	model.StateFreelancerDashboard:      restricted(SectionDashboard, PolicyFreelancerOnly),
	model.StateCustomerDashboard:        restricted(SectionDashboard, PolicyGeneralOnly),
	model.StateCreatorEarningsDashboard: restricted(SectionDashboard, PolicyEarnings),
	model.StateCourseCreator:            restricted(SectionCreator, PolicyTeaching),
	model.StateSubjectCreator:           restricted(SectionCreator, PolicyTeaching),

	model.StateAdminDashboard:              restricted(SectionAdmin, PolicyStaff),
	model.StateAdminShowcaseDashboard:      restricted(SectionAdmin, PolicyContentModeration),
	model.StateAdminEmailManagement:        restricted(SectionAdmin, PolicyContentModeration),
	model.StateAdminEmailCampaigns:         restricted(SectionAdmin, PolicyContentModeration),
	model.StateAdminEmailInbox:             restricted(SectionAdmin, PolicySupportDesk),
	model.StateAdminBlogManagement:         restricted(SectionAdmin, PolicyContentModeration),
	model.StateAdminCourseManagement:       restricted(SectionAdmin, PolicyContentModeration),
	model.StateAdminContactMessages:        restricted(SectionAdmin, PolicySupportDesk),
	model.StateAdminApplicationsManagement: restricted(SectionAdmin, PolicyContentModeration),
	model.StateAdminSubjectApproval:        restricted(SectionAdmin, PolicyContentModeration),
	model.StateAdminPayoutManagement:       restricted(SectionAdmin, PolicyAdminOnly),
	model.StateLogoManagement:              restricted(SectionAdmin, PolicyAdminOnly),
	model.StateCategoryManagement:          restricted(SectionAdmin, PolicyAdminOnly),
	model.StateCouponManagement:            restricted(SectionAdmin, PolicyAdminOnly),
}

// Builtin returns the descriptor of every page state in enumeration order,
// with routing facts taken from the mapper.
func Builtin(m *route.Mapper) []PageDescriptor {
	descs := make([]PageDescriptor, 0, len(model.AllStates))
	for _, s := range model.AllStates {
		e, ok := builtin[s]
		if !ok {
			continue
		}
		d := PageDescriptor{
			State:       s,
			Access:      e.access,
			Policy:      e.policy,
			WebsiteOnly: e.websiteOnly,
			Section:     e.section,
			Forward:     e.forward,
		}
		descs = append(descs, withRouting(d, m))
	}
	return ResolvePolicies(descs)
}

// ResolvePolicies fills Roles from each descriptor's named policy. Unknown
// policies leave Roles empty, which the validator reports.
func ResolvePolicies(descs []PageDescriptor) []PageDescriptor {
	for i := range descs {
		if descs[i].Access != model.AccessRoleRestricted {
			descs[i].Roles = nil
			continue
		}
		descs[i].Roles = Policies[descs[i].Policy]
	}
	return descs
}

func withRouting(d PageDescriptor, m *route.Mapper) PageDescriptor {
	d.Dynamic = m.IsDynamic(d.State)
	d.Aliases = m.Aliases(d.State)
	if m.HasCleanPath(d.State) {
		d.Path = m.ResolvePathFromState(d.State, nil)
	} else {
		d.QueryRoutable = true
		d.Path = m.CanonicalPath(d.State)
	}
	return d
}

// Build assembles the builtin catalog, applies the override files and
// validates the result. Any error leaves the returned descriptors unusable.
func Build(m *route.Mapper, files []OverrideFile) ([]PageDescriptor, []VError) {
	descs, errs := ApplyOverrides(Builtin(m), files)
	errs = append(errs, NewValidator(m).Validate(descs)...)
	return descs, errs
}
